package validate

import (
	"github.com/beevik/etree"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// parseReport normalizes the tool's validation report into a Result. The
// report carries message elements with a level attribute, an engine name and
// an assessment block whose accept/reject child is the tool's
// recommendation.
func parseReport(reportData []byte) (*Result, error) {
	// etree parses rootless input without error; a report with no root
	// element is just as unreadable.
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(reportData); err != nil || doc.Root() == nil {
		return nil, &model.PipelineError{
			Code:    model.ErrCodeToolUnavailable,
			Message: "unreadable validation report",
			Cause:   err,
		}
	}

	result := NewResult()

	if engine := doc.FindElement("//engine/name"); engine != nil {
		result.ToolVersion = engine.Text()
	}

	for _, msg := range doc.FindElements("//message") {
		finding := Finding{
			Severity: mapSeverity(msg.SelectAttrValue("level", "error")),
			Code:     msg.SelectAttrValue("code", ""),
			Message:  msg.Text(),
			Location: msg.SelectAttrValue("xpathLocation", ""),
		}
		result.Add(finding)
	}

	accepted := doc.FindElement("//assessment/accept") != nil &&
		doc.FindElement("//assessment/reject") == nil

	result.Finalize(accepted)
	return result, nil
}

// mapSeverity maps the tool's levels onto the uniform scale. Unknown levels
// count as errors so that malformed reports cannot pass silently.
func mapSeverity(level string) Severity {
	switch level {
	case "warning":
		return SeverityWarning
	case "information", "info":
		return SeverityInfo
	case "error", "fatal":
		return SeverityError
	default:
		return SeverityError
	}
}
