package einvoice

import (
	"context"
	"sync"
)

// BatchFile is one input document for batch validation.
type BatchFile struct {
	Name string
	Data []byte
}

// BatchItem is the per-file outcome of a batch run.
type BatchItem struct {
	Name    string
	Dialect Dialect
	Result  *ValidationResult
	Err     error
}

const defaultBatchWorkers = 4

// ValidateBatch extracts and validates many files concurrently. Each file is
// fully isolated; one external tool process per validation. Order of the
// returned items matches the input order.
func (p *Processor) ValidateBatch(ctx context.Context, files []BatchFile, workers int) []BatchItem {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > len(files) {
		workers = len(files)
	}

	items := make([]BatchItem, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = p.validateOne(ctx, files[i])
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			items[i] = BatchItem{Name: files[i].Name, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	return items
}

func (p *Processor) validateOne(ctx context.Context, file BatchFile) BatchItem {
	item := BatchItem{Name: file.Name}

	res, err := p.Extract(file.Data, file.Name)
	if err != nil {
		item.Err = err
		return item
	}
	item.Dialect = res.Dialect

	result, err := p.validator.Validate(ctx, res.XML)
	if err != nil {
		item.Err = err
		return item
	}
	item.Result = result
	return item
}
