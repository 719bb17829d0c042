// =============================================================================
// OBX Importer - Validation Engine
// =============================================================================
//
// This module checks an OBX document for problems that the quotation engine
// would otherwise paper over. The engine never fails on sparse input: a
// missing price becomes 0 and a missing article number becomes "". The
// validator reports those cases so the user can see what was defaulted.
//
// CHECKS:
//   Document level: cutBuffer root, items container, at least one article
//   Folder level:   folders without positions
//   Article level:  final article number, short text, sale price
//
// ERROR HANDLING:
//   - Problems are collected, not returned one by one
//   - "error" severity marks input whose output would be wrong (unreadable
//     prices, wrong root); "warning" marks input that was defaulted
//   - Whether errors stop a conversion is the caller's decision
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fidge123/lexware-obx-importer/internal/obxparser"
	"github.com/beevik/etree"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule identifiers.
const (
	RuleRoot          = "root"
	RuleItems         = "items"
	RuleNoArticles    = "no_articles"
	RuleEmptyFolder   = "empty_folder"
	RuleArticleNumber = "article_number"
	RuleShortText     = "short_text"
	RuleMissingPrice  = "missing_price"
	RuleInvalidPrice  = "invalid_price"
	RuleInvalidVolume = "invalid_volume"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Rule is the check that produced the finding.
	Rule string

	// Location identifies the element, e.g. "Küche / position 1 / article 2".
	Location string

	// Value is the offending value, if any.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Location, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors. Warnings do not count.
	IsValid bool

	// Errors contains all findings, including warnings, in document order.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// ArticlesValidated is the number of top-level articles checked.
	ArticlesValidated int

	// FoldersValidated is the number of room folders checked.
	FoldersValidated int
}

func (r *ValidationResult) add(severity, rule, location, value, message string) {
	r.Errors = append(r.Errors, &ValidationError{
		Severity: severity,
		Rule:     rule,
		Location: location,
		Value:    value,
		Message:  message,
	})
	if severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks OBX documents.
type Validator struct {
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the document.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{TreatWarningsAsErrors: false}
}

// NewValidator creates a new Validator instance.
func NewValidator(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateDocument checks doc with the default options.
func ValidateDocument(doc *etree.Document) *ValidationResult {
	return NewValidator(DefaultValidationOptions()).Validate(doc)
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate runs every check on doc.
//
// PARAMETERS:
//   - doc: The parsed OBX document. A nil document is reported as invalid.
//
// RETURNS:
//   - The collected findings.
func (v *Validator) Validate(doc *etree.Document) *ValidationResult {
	result := &ValidationResult{}

	var root *etree.Element
	if doc != nil {
		root = doc.Root()
	}
	switch {
	case root == nil:
		result.add(SeverityError, RuleRoot, "document", "", "document has no root element")
	case root.Tag != obxparser.RootElement:
		result.add(SeverityError, RuleRoot, "document", root.Tag, "root element is not cutBuffer")
	default:
		v.validateItems(root, result)
	}

	result.IsValid = result.ErrorCount == 0
	if v.options.TreatWarningsAsErrors && result.WarningCount > 0 {
		result.IsValid = false
	}
	return result
}

// validateItems walks the item container the same way the quotation engine
// does: folders first, then the flat article list when there are none.
func (v *Validator) validateItems(root *etree.Element, result *ValidationResult) {
	items := root.SelectElement("items")
	if items == nil {
		result.add(SeverityError, RuleItems, "cutBuffer", "", "document has no items element")
		return
	}

	folders := items.SelectElements("bskFolder")
	if len(folders) == 0 {
		for i, article := range items.SelectElements("bskArticle") {
			v.validateArticle(article, fmt.Sprintf("article %d", i+1), result)
		}
	} else {
		for i, folder := range folders {
			v.validateFolder(folder, i, result)
		}
	}

	if result.ArticlesValidated == 0 {
		result.add(SeverityWarning, RuleNoArticles, "items", "", "document contains no articles")
	}
}

func (v *Validator) validateFolder(folder *etree.Element, index int, result *ValidationResult) {
	result.FoldersValidated++

	name := textOf(folder.FindElement("./label[@lang='de']"))
	if name == "" {
		name = fmt.Sprintf("folder %d", index+1)
	}

	positions := folder.SelectElements("setArticle")
	if len(positions) == 0 {
		result.add(SeverityWarning, RuleEmptyFolder, name, "", "folder has no positions")
		return
	}

	for p, position := range positions {
		for a, article := range position.SelectElements("bskArticle") {
			v.validateArticle(article, fmt.Sprintf("%s / position %d / article %d", name, p+1, a+1), result)
		}
	}
}

func (v *Validator) validateArticle(article *etree.Element, location string, result *ValidationResult) {
	result.ArticlesValidated++

	if textOf(article.FindElement("./artNr[@type='final']")) == "" {
		result.add(SeverityWarning, RuleArticleNumber, location, "", "article has no final article number")
	}

	if textOf(article.FindElement("./description[@type='short']/text[@lang='de']")) == "" {
		result.add(SeverityWarning, RuleShortText, location, "", "article has no German short text")
	}

	price := article.FindElement("./itemPrice[@type='sale'][@pd='1']")
	if price == nil || price.SelectAttr("value") == nil {
		result.add(SeverityWarning, RuleMissingPrice, location, "", "article has no sale price, 0 will be used")
	} else if value := price.SelectAttrValue("value", ""); !isNumber(value) {
		result.add(SeverityError, RuleInvalidPrice, location, value, "sale price is not a number")
	}

	for _, pack := range article.FindElements(".//packInfo[@key='volume']") {
		if value := pack.SelectAttrValue("value", ""); value != "" && !isNumber(value) {
			result.add(SeverityWarning, RuleInvalidVolume, location, value, "packing volume is not a number")
		}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func textOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(el.Text(), "\t", ""))
}

// isNumber accepts decimals with either "." or "," as separator.
func isNumber(value string) bool {
	value = strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	if value == "" {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// FormatErrors formats validation findings for display or logging.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
