package validation

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed postal.yaml
var postalYAML []byte

var (
	postalOnce     sync.Once
	postalPatterns map[string]*regexp.Regexp
	postalErr      error
)

func loadPostalTable() {
	var raw map[string]string
	if err := yaml.Unmarshal(postalYAML, &raw); err != nil {
		postalErr = fmt.Errorf("validation: parse postal table: %w", err)
		return
	}
	postalPatterns = make(map[string]*regexp.Regexp, len(raw))
	for code, pattern := range raw {
		re, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
		if err != nil {
			postalErr = fmt.Errorf("validation: postal pattern for %s: %w", code, err)
			return
		}
		postalPatterns[strings.ToUpper(code)] = re
	}
}

// VerifyPostalTable compiles the embedded country patterns. Called at
// startup so a broken pattern halts initialization instead of surfacing on a
// live validation pass.
func VerifyPostalTable() error {
	postalOnce.Do(loadPostalTable)
	return postalErr
}

// postalPattern returns the compiled pattern for a country code, nil when
// the country has no postal format on record.
func postalPattern(countryCode string) *regexp.Regexp {
	postalOnce.Do(loadPostalTable)
	if postalErr != nil {
		return nil
	}
	return postalPatterns[strings.ToUpper(countryCode)]
}
