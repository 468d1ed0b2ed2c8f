package truth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UriReader is the pluggable loader a Program uses to resolve a Uri into
// source text (spec §1, §7). truthfs provides a filesystem-backed
// implementation.
type UriReader interface {
	Load(ctx context.Context, u *Uri) (string, error)
}

// VerificationRequest is one hypothetical-or-real phrase the type analyzer
// is expected to examine, queued but never drained by this package (spec
// §1: "only queue/hook contracts").
type VerificationRequest struct {
	Document *Document
	Phrase   *Phrase
}

// ProgramOptions configures a Program (spec §1 NEW "Configuration").
type ProgramOptions struct {
	RegisteredProtocols    map[string]bool
	MaxDocumentSize        int
	VerificationQueueDepth int
	Reader                 UriReader
}

// ProgramOption mutates a ProgramOptions under construction, following the
// teacher's functional-option convention.
type ProgramOption func(*ProgramOptions)

// WithRegisteredProtocols stores a set of URI protocols in
// ProgramOptions.RegisteredProtocols. The statement parser does not read
// this option: it always recognizes the built-in protocol set (file, http,
// https, internal, none, unknown).
func WithRegisteredProtocols(protocols ...string) ProgramOption {
	return func(o *ProgramOptions) {
		o.RegisteredProtocols = make(map[string]bool, len(protocols))
		for _, p := range protocols {
			o.RegisteredProtocols[p] = true
		}
	}
}

// WithMaxDocumentSize bounds the text length accepted by
// AddDocumentFromText/AddDocumentFromURI.
func WithMaxDocumentSize(n int) ProgramOption {
	return func(o *ProgramOptions) { o.MaxDocumentSize = n }
}

// WithVerificationQueueDepth bounds the number of pending
// VerificationRequests retained before the oldest are dropped.
func WithVerificationQueueDepth(n int) ProgramOption {
	return func(o *ProgramOptions) { o.VerificationQueueDepth = n }
}

// WithUriReader sets the default reader used to resolve URI statements
// discovered during an edit, as opposed to the reader passed explicitly to
// AddDocumentFromURI.
func WithUriReader(r UriReader) ProgramOption {
	return func(o *ProgramOptions) { o.Reader = r }
}

func defaultProgramOptions() ProgramOptions {
	return ProgramOptions{
		RegisteredProtocols:    map[string]bool{"file": true, "http": true, "https": true, "internal": true, "none": true, "unknown": true},
		MaxDocumentSize:        4 << 20,
		VerificationQueueDepth: 1024,
	}
}

// Program is the single-owner host facade: it interns terms, owns every
// open Document, and publishes the cause-bus events those documents'
// edits produce (spec §3 §5 §6, GLOSSARY "Cause").
type Program struct {
	opts   ProgramOptions
	terms  *termTable
	reader UriReader

	byID  map[uuid.UUID]*Document
	byURI map[string]*Document
	order []*Document

	bus               *causeBus
	faults            []Fault
	verificationQueue []VerificationRequest
}

// NewProgram constructs an empty Program (spec §6 NEW "Program-level API").
func NewProgram(opts ...ProgramOption) *Program {
	o := defaultProgramOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Program{
		opts:   o,
		terms:  newTermTable(),
		reader: o.Reader,
		byID:   map[uuid.UUID]*Document{},
		byURI:  map[string]*Document{},
		bus:    newCauseBus(),
	}
	return p
}

// Subscribe registers fn for events of kind, returning an unsubscribe
// function (spec §6, §9 "Observer pattern").
func (p *Program) Subscribe(kind CauseKind, fn CauseFunc) func() {
	return p.bus.subscribe(kind, fn)
}

// Documents returns every open document, in the order they were added.
func (p *Program) Documents() []*Document {
	return append([]*Document(nil), p.order...)
}

// GetDocumentByURI looks up an open document by its store-form URI.
func (p *Program) GetDocumentByURI(u *Uri) (*Document, bool) {
	d, ok := p.byURI[u.StoreString()]
	return d, ok
}

// Faults returns the union of every open document's current fault set.
func (p *Program) Faults() []Fault {
	var all []Fault
	for _, d := range p.order {
		all = append(all, d.Faults()...)
	}
	return all
}

// DrainVerificationQueue returns and clears the queue of hypothetical/real
// phrases accumulated since the last drain (spec §2 dataflow).
func (p *Program) DrainVerificationQueue() []VerificationRequest {
	q := p.verificationQueue
	p.verificationQueue = nil
	return q
}

func (p *Program) enqueueVerification(req VerificationRequest) {
	p.verificationQueue = append(p.verificationQueue, req)
	if over := len(p.verificationQueue) - p.opts.VerificationQueueDepth; over > 0 {
		p.verificationQueue = p.verificationQueue[over:]
	}
}

// AddDocumentFromText parses text into a new Document, resolves its URI
// statements, registers it, and fires CauseDocumentCreate (spec §6).
func (p *Program) AddDocumentFromText(text string) (*Document, error) {
	if p.opts.MaxDocumentSize > 0 && len(text) > p.opts.MaxDocumentSize {
		return nil, &InvalidArgumentError{Func: "AddDocumentFromText", Arg: "text", Value: fmt.Sprintf("%d bytes", len(text))}
	}
	doc := newDocumentFromText(p, text)
	p.registerDocument(doc)
	added, removed := p.resolveReferences(context.Background(), doc, nil, doc.uriStatements)
	p.publishFaultChange(added, removed)
	p.publish(Cause{Kind: CauseDocumentCreate, Document: doc})
	return doc, nil
}

// AddDocumentFromURI loads text for u through reader (falling back to the
// Program's configured default reader when reader is nil), then behaves as
// AddDocumentFromText. The loaded document is registered under u.
func (p *Program) AddDocumentFromURI(ctx context.Context, u *Uri, reader UriReader) (*Document, error) {
	if reader == nil {
		reader = p.reader
	}
	if reader == nil {
		return nil, &InvalidArgumentError{Func: "AddDocumentFromURI", Arg: "reader", Value: nil}
	}
	text, err := reader.Load(ctx, u)
	if err != nil {
		return nil, err
	}
	if p.opts.MaxDocumentSize > 0 && len(text) > p.opts.MaxDocumentSize {
		return nil, &InvalidArgumentError{Func: "AddDocumentFromURI", Arg: "text", Value: fmt.Sprintf("%d bytes", len(text))}
	}
	if _, taken := p.byURI[u.StoreString()]; taken {
		return nil, &URIAlreadyAssignedError{URI: u, Existing: p.byURI[u.StoreString()]}
	}
	doc := newDocumentFromText(p, text)
	doc.uri = u
	p.registerDocument(doc)
	added, removed := p.resolveReferences(ctx, doc, nil, doc.uriStatements)
	p.publishFaultChange(added, removed)
	p.publish(Cause{Kind: CauseDocumentCreate, Document: doc})
	return doc, nil
}

// DeleteDocument removes d from the program, firing CauseDocumentDelete
// before unlinking it from its dependencies' dependents lists.
func (p *Program) DeleteDocument(d *Document) error {
	if _, ok := p.byID[d.ID]; !ok {
		return &InvalidArgumentError{Func: "DeleteDocument", Arg: "d", Value: d.ID}
	}
	p.publish(Cause{Kind: CauseDocumentDelete, Document: d})
	for _, dep := range d.dependencies {
		dep.dependents = removeDocument(dep.dependents, d)
	}
	for _, dependent := range d.dependents {
		dependent.dependencies = removeDocument(dependent.dependencies, d)
	}
	delete(p.byID, d.ID)
	if d.uri != nil {
		delete(p.byURI, d.uri.StoreString())
	}
	for i, doc := range p.order {
		if doc == d {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateURI assigns a new URI to d, failing if another open document
// already claims it (spec §3 NEW "Document identity").
func (p *Program) UpdateURI(d *Document, u *Uri) error {
	if existing, ok := p.byURI[u.StoreString()]; ok && existing != d {
		return &URIAlreadyAssignedError{URI: u, Existing: existing}
	}
	if d.uri != nil {
		delete(p.byURI, d.uri.StoreString())
	}
	d.uri = u
	p.byURI[u.StoreString()] = d
	p.publish(Cause{Kind: CauseDocumentUriChange, Document: d, NewURI: u})
	return nil
}

func (p *Program) registerDocument(doc *Document) {
	p.byID[doc.ID] = doc
	if doc.uri != nil {
		p.byURI[doc.uri.StoreString()] = doc
	}
	p.order = append(p.order, doc)
}

func (p *Program) publish(c Cause) { p.bus.publish(c) }

func (p *Program) publishFaultChange(added, removed []Fault) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	p.publish(Cause{Kind: CauseFaultChange, FaultsAdded: added, FaultsRemoved: removed})
}
