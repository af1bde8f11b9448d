// Package types implements the functions, types, and interfaces for the module.
package types

const (
	Application = "buildit"
	Description = "Builder method generator for structs with optional fields"
	WebSite     = "https://github.com/origadmin/buildit"
	UI          = `
 _           _ _     _ _ _
| |__  _   _(_) | __| (_) |_
| '_ \| | | | | |/ _' | | __|
| |_) | |_| | | | (_| | | |_
|_.__/ \__,_|_|_|\__,_|_|\__|
`
)

// Directive prefixes recognised in Go source comments.
const (
	DirectivePrefix  = "//buildit:"
	BuilderDirective = DirectivePrefix + "builder"
	SkipDirective    = DirectivePrefix + "skip"
)

// TagKey is the struct tag key holding field level directives.
const TagKey = "buildit"

// Defaults shared by the configuration and the generator.
const (
	DefaultOutputFile  = "builder.gen.go"
	DefaultWrapperType = "Option"
	DefaultConstructor = "Some"
	DefaultPrefix      = "With"
	DefaultHeader      = "Code generated by {{ .Application }}. DO NOT EDIT."
)
