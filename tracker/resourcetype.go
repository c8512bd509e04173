package tracker

// ResourceType classifies a tracked resource. It is purely informational,
// used to partition cleanup-by-type operations and statistics.
type ResourceType int

// Resource types that can be tracked. TypeCustom is the zero value, so
// untyped registrations land in the catch-all bucket.
const (
	TypeCustom ResourceType = iota
	TypeConnection
	TypeFile
	TypeMemory
	TypeThread
	TypeProcess
	TypeLock
)

func (t ResourceType) String() string {
	switch t {
	case TypeConnection:
		return "connection"
	case TypeFile:
		return "file"
	case TypeMemory:
		return "memory"
	case TypeThread:
		return "thread"
	case TypeProcess:
		return "process"
	case TypeLock:
		return "lock"
	case TypeCustom:
		return "custom"
	}
	return "unknown"
}
