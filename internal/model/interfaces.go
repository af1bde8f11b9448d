package model

// Planner turns analysed packages into generation plans.
type Planner interface {
	Plan(pkg *Package) *PackagePlan
}

// CodeGenerator renders a plan into Go source.
type CodeGenerator interface {
	Generate(plan *PackagePlan) ([]byte, error)
}
