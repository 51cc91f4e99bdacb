package extract

import (
	"regexp"
	"strings"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Guideline identifier substrings mapped to conformance profiles. Order
// matters: more specific tokens are checked before generic ones.
var profileMarkers = []struct {
	token   string
	profile model.Profile
}{
	{"xrechnung", model.ProfileXRechnung},
	{"minimum", model.ProfileMinimum},
	{"basicwl", model.ProfileBasicWL},
	{"basic-wl", model.ProfileBasicWL},
	{"basic", model.ProfileBasic},
	// The extended guideline URN embeds "en16931", so it must match first.
	{"extended", model.ProfileExtended},
	{"en16931", model.ProfileEN16931},
	{"en 16931", model.ProfileEN16931},
	{"comfort", model.ProfileEN16931},
}

// Matches the guideline/customization identifier element of both dialects:
// CII ram:GuidelineSpecifiedDocumentContextParameter/ram:ID and
// UBL cbc:CustomizationID.
var guidelineIDPattern = regexp.MustCompile(`(?is)<(?:\w+:)?(?:ID|CustomizationID)[^>]*>([^<]*(?:factur-x|zugferd|xrechnung|en16931|urn:cen\.eu)[^<]*)</`)

var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// DetectProfile inspects the guideline identifier of an invoice XML and maps
// it to a conformance profile plus a dotted version token. Detection never
// fails: unrecognized content yields ProfileUnknown and an empty version,
// which callers surface as a warning.
func DetectProfile(xmlData []byte) (model.Profile, string) {
	m := guidelineIDPattern.FindSubmatch(xmlData)
	if m == nil {
		return model.ProfileUnknown, ""
	}

	id := strings.ToLower(string(m[1]))

	profile := model.ProfileUnknown
	for _, marker := range profileMarkers {
		if strings.Contains(id, marker.token) {
			profile = marker.profile
			break
		}
	}

	version := ""
	if vm := versionPattern.FindString(id); vm != "" {
		version = vm
	}

	return profile, version
}
