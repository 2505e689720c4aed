package analysis

// Privilege identifies the access level a statement needs on an object.
type Privilege string

// Privilege levels.
const (
	PrivilegeSelect Privilege = "SELECT"
	PrivilegeInsert Privilege = "INSERT"
	PrivilegeAll    Privilege = "ALL"
)

// ObjectType classifies the object an access touched.
type ObjectType string

// Object types.
const (
	ObjectTable ObjectType = "TABLE"
	ObjectView  ObjectType = "VIEW"
)

// AccessEvent is an audit record of a catalog object access, independent of
// the authorization outcome.
type AccessEvent struct {
	Name      string // fully qualified object name
	Type      ObjectType
	Privilege Privilege
}

func (e AccessEvent) key() string {
	return e.Name + "\x00" + string(e.Type) + "\x00" + string(e.Privilege)
}

// PrivilegeRequest is a recorded need to authorize access to a catalog
// object, deferred to a separate adjudication phase. The request list
// produced for a statement is equivalent to fully inlining every WITH-clause
// reference at its use site: complete and without duplicates.
type PrivilegeRequest struct {
	Object    string // fully qualified object name
	Privilege Privilege
}

func (r PrivilegeRequest) key() string {
	return r.Object + "\x00" + string(r.Privilege)
}
