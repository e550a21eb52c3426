package schema

import "github.com/agentic-research/notional/internal/property"

// Constructors for the properties of a database to create.

func declare(kind property.Kind) *Property { return &Property{Kind: kind} }

func Title() *Property          { return declare(property.KindTitle) }
func RichText() *Property       { return declare(property.KindRichText) }
func Checkbox() *Property       { return declare(property.KindCheckbox) }
func Date() *Property           { return declare(property.KindDate) }
func URL() *Property            { return declare(property.KindURL) }
func Email() *Property          { return declare(property.KindEmail) }
func PhoneNumber() *Property    { return declare(property.KindPhoneNumber) }
func People() *Property         { return declare(property.KindPeople) }
func Files() *Property          { return declare(property.KindFiles) }
func CreatedTime() *Property    { return declare(property.KindCreatedTime) }
func CreatedBy() *Property      { return declare(property.KindCreatedBy) }
func LastEditedTime() *Property { return declare(property.KindLastEditedTime) }
func LastEditedBy() *Property   { return declare(property.KindLastEditedBy) }

// Number declares a number column; format is e.g. "number", "dollar" or "percent".
func Number(format string) *Property {
	p := declare(property.KindNumber)
	if format == "" {
		format = "number"
	}
	p.Config.Format = format
	return p
}

func Select(options ...string) *Property { return withOptions(property.KindSelect, options) }

func MultiSelect(options ...string) *Property {
	return withOptions(property.KindMultiSelect, options)
}

// Relation declares a relation to the pages of another database.
func Relation(databaseID string) *Property {
	p := declare(property.KindRelation)
	p.Config.DatabaseID = databaseID
	return p
}

func Formula(expression string) *Property {
	p := declare(property.KindFormula)
	p.Config.Expression = expression
	return p
}

func withOptions(kind property.Kind, names []string) *Property {
	p := declare(kind)
	p.Config.Options = make([]property.SelectOption, len(names))
	for i, n := range names {
		p.Config.Options[i] = property.SelectOption{Name: n}
	}
	return p
}
