package analyzers

import (
	"fmt"
	"strings"
)

// AnalyzerPlaceholder flags newly added form inputs without a placeholder.
var AnalyzerPlaceholder = &Analyzer{
	Name: "ux005_placeholder",
	Rule: 5,
	Doc:  "flags newly added input components missing a placeholder attribute",
	Run:  runPlaceholder,
}

// Compound sub-components are never leaf inputs and never need a
// placeholder, whatever the component list says.
var excludedInputComponents = []string{
	"Select.Option", "Select.OptGroup", "Form.Item", "Input.Group",
	"Input.Search", "Radio.Group", "Radio.Button", "Checkbox.Group",
	"Option", "OptGroup",
}

func runPlaceholder(pass *Pass) ([]Violation, error) {
	if !pass.Enabled(5) {
		return nil, nil
	}
	rc := pass.RuleConfig(5)
	inputNames := rc.CustomKeywords.InputComponents
	if !pass.Diff.NewFile && !addsInputComponent(pass, inputNames) {
		return nil, nil
	}

	var out []Violation
	for _, el := range pass.Elements() {
		if !isInputComponent(el.Name, inputNames) {
			continue
		}
		if !pass.Diff.LineAdded(el.Line) {
			continue
		}
		if rc.WhitelistedKeyword(el.Name) || whitelistedElement(rc.Whitelist.Keywords, el) {
			continue
		}
		if hasPlaceholder(el, rc.CustomKeywords.PlaceholderAttributes) {
			continue
		}
		out = append(out, Violation{
			Rule:       5,
			Line:       el.Line,
			Message:    fmt.Sprintf("input component <%s> has no placeholder", el.Name),
			Suggestion: "add a placeholder describing the expected input",
		})
	}
	return out, nil
}

func isInputComponent(name string, inputNames []string) bool {
	for _, ex := range excludedInputComponents {
		if name == ex || strings.HasSuffix(name, "."+ex) {
			return false
		}
	}
	if strings.Contains(name, ".") {
		// Any dotted sub-component is a structural child, not a leaf input.
		return false
	}
	for _, in := range inputNames {
		if name == in {
			return true
		}
	}
	return false
}

func hasPlaceholder(el Element, placeholderAttrs []string) bool {
	for _, attr := range placeholderAttrs {
		if el.HasAttr(attr) {
			return true
		}
	}
	return false
}

// whitelistedElement exempts elements whose attribute values mention a
// whitelist keyword (e.g. a named search field the team excluded).
func whitelistedElement(keywords []string, el Element) bool {
	for _, v := range el.Attrs {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(strings.ToLower(v), strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

func addsInputComponent(pass *Pass, inputNames []string) bool {
	added := pass.Diff.AddedText()
	for _, in := range inputNames {
		if in != "" && strings.Contains(added, "<"+in) {
			return true
		}
	}
	return false
}
