package action

import "fmt"

// Finalize applies variant-specific defaults and then validates the action
// in place. It is called once per parsed action, after the YAML payload has
// been strictly decoded into the concrete type.
func Finalize(a Action) error {
	switch v := a.(type) {
	case *Bash:
		v.setDefaults()
		return v.validate()
	case *Finish:
		v.setDefaults()
		return nil
	case *Todo:
		return v.validate()
	case *Read:
		return v.validate()
	case *Write:
		return v.validate()
	case *Edit:
		return v.validate()
	case *MultiEdit:
		return v.validate()
	case *FileMetadata:
		return v.validate()
	case *Grep:
		return v.validate()
	case *Glob:
		return v.validate()
	case *LS:
		return v.validate()
	case *AddNote:
		return v.validate()
	case *ViewAllNotes:
		return nil
	case *TaskCreate:
		return v.validate()
	case *AddContext:
		v.setDefaults()
		return v.validate()
	case *LaunchSubagent:
		return v.validate()
	case *Report:
		return nil
	case *WriteTempScript:
		return v.validate()
	default:
		return fmt.Errorf("action: no validator registered for %T", a)
	}
}
