package truth

import "fmt"

// DoubleTransactionError is returned when a transaction is started on a
// Document that is already inside one (spec §5, §7: reentrant edit calls
// fail with DoubleTransaction).
type DoubleTransactionError struct {
	Document *Document
}

func (e *DoubleTransactionError) Error() string {
	return "truth: document is already inside an edit transaction"
}

// InvalidArgumentError reports a contract violation at an API boundary
// (spec §7: "invalid argument to a navigation helper").
type InvalidArgumentError struct {
	Func  string
	Arg   string
	Value any
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("truth: %s: invalid %s: %v", e.Func, e.Arg, e.Value)
}

// URIAlreadyAssignedError is returned by Program.UpdateURI and
// Program.AddDocumentFromURI when the target URI already identifies another
// open document (spec §7).
type URIAlreadyAssignedError struct {
	URI      *Uri
	Existing *Document
}

func (e *URIAlreadyAssignedError) Error() string {
	return fmt.Sprintf("truth: uri %q already assigned to another document", e.URI.StoreString())
}

// NotInEditError is returned by a Mutator method called after its
// transaction function has already returned.
type NotInEditError struct{}

func (e *NotInEditError) Error() string {
	return "truth: edit call outside of an active transaction"
}
