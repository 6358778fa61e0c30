package domain

// Role is the access tier of a user account.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// IsValid reports whether the role is one of the known tiers.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Step identifies which part of an item a history record refers to.
type Step string

const (
	StepScan       Step = "SCAN"
	StepSchema     Step = "SCHEMA"
	StepTranslate  Step = "TRANSLATE"
	StepSketch     Step = "SKETCH"
	StepItem       Step = "ITEM"
	StepViolations Step = "VIOLATIONS"
)

// IsValid reports whether the step is a known step name.
func (s Step) IsValid() bool {
	switch s {
	case StepScan, StepSchema, StepTranslate, StepSketch, StepItem, StepViolations:
		return true
	}
	return false
}

func (s Step) String() string { return string(s) }

// SnapshotStages are the steps that carry a persisted stage snapshot.
// ITEM and VIOLATIONS appear only in history records.
var SnapshotStages = []Step{StepScan, StepSchema, StepTranslate, StepSketch}

// ActionType classifies what a history record describes.
type ActionType string

const (
	ActionCreate   ActionType = "CREATE"
	ActionSave     ActionType = "SAVE"
	ActionUpdate   ActionType = "UPDATE"
	ActionDelete   ActionType = "DELETE"
	ActionRollback ActionType = "ROLLBACK"

	// Stage completion markers written by the pipeline before the final save.
	ActionOCRDone       ActionType = "OCR_DONE"
	ActionStructureDone ActionType = "STRUCTURE_DONE"
	ActionTranslateDone ActionType = "TRANSLATE_DONE"
)

func (a ActionType) String() string { return string(a) }
