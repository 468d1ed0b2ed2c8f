package truth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramAddDocumentFromTextFiresCreate(t *testing.T) {
	p := NewProgram()
	var created *Document
	p.Subscribe(CauseDocumentCreate, func(c Cause) { created = c.Document })

	doc, err := p.AddDocumentFromText("A : B")
	require.NoError(t, err)
	assert.Same(t, doc, created, "CauseDocumentCreate should carry the new document")

	_, ok := p.GetDocumentByURI(&Uri{Protocol: "file", Path: "x"})
	assert.False(t, ok, "an unrelated URI must not resolve to any document")
	assert.Contains(t, p.Documents(), doc)
}

func TestProgramAddDocumentFromURIRegistersByURI(t *testing.T) {
	p := NewProgram()
	u := &Uri{Protocol: "file", Path: "a"}
	doc, err := p.AddDocumentFromURI(context.Background(), u, mapReader{"a": "A : B"})
	require.NoError(t, err)

	got, ok := p.GetDocumentByURI(u)
	require.True(t, ok)
	assert.Same(t, doc, got)
}

func TestProgramAddDocumentFromURIRejectsReassignedURI(t *testing.T) {
	p := NewProgram()
	u := &Uri{Protocol: "file", Path: "a"}
	r := mapReader{"a": "A : B"}
	_, err := p.AddDocumentFromURI(context.Background(), u, r)
	require.NoError(t, err)

	_, err = p.AddDocumentFromURI(context.Background(), u, r)
	assert.IsType(t, &URIAlreadyAssignedError{}, err)
}

func TestProgramUpdateURIRejectsConflict(t *testing.T) {
	p := NewProgram()
	docA, _ := p.AddDocumentFromText("A : B")
	docB, _ := p.AddDocumentFromText("C : D")

	u := &Uri{Protocol: "file", Path: "shared"}
	require.NoError(t, p.UpdateURI(docA, u))

	err := p.UpdateURI(docB, u)
	require.Error(t, err)
	e, ok := err.(*URIAlreadyAssignedError)
	require.True(t, ok)
	assert.Same(t, docA, e.Existing)
}

func TestProgramDeleteDocumentUnlinksDependencies(t *testing.T) {
	p := NewProgram()
	x, _ := p.AddDocumentFromText("")
	y, _ := p.AddDocumentFromText("")
	require.NoError(t, p.UpdateURI(x, &Uri{Protocol: "file", Path: "x"}))
	require.NoError(t, p.UpdateURI(y, &Uri{Protocol: "file", Path: "y"}))
	require.NoError(t, x.Edit(func(m *Mutator) { m.Update("file//y", 0) }))

	require.Len(t, y.Dependents(), 1)
	assert.Same(t, x, y.Dependents()[0])

	var deleteCause *Document
	p.Subscribe(CauseDocumentDelete, func(c Cause) { deleteCause = c.Document })

	require.NoError(t, p.DeleteDocument(x))
	assert.Same(t, x, deleteCause, "CauseDocumentDelete should carry the deleted document")
	assert.Empty(t, y.Dependents(), "y must lose x as a dependent once x is deleted")

	_, ok := p.GetDocumentByURI(&Uri{Protocol: "file", Path: "x"})
	assert.False(t, ok, "x's URI should be freed after deletion")
}

func TestProgramDeleteDocumentRejectsUnknown(t *testing.T) {
	p := NewProgram()
	other := NewProgram()
	foreign, _ := other.AddDocumentFromText("A : B")

	assert.Error(t, p.DeleteDocument(foreign))
}

func TestProgramFaultsUnionsAllDocuments(t *testing.T) {
	p := NewProgram()
	_, err := p.AddDocumentFromText(",A : B")
	require.NoError(t, err)
	_, err = p.AddDocumentFromText("...A : B")
	require.NoError(t, err)

	assert.Len(t, p.Faults(), 2)
}

func TestProgramVerificationQueueAccumulatesAndDrains(t *testing.T) {
	p := NewProgram()
	_, err := p.AddDocumentFromText("A : B\n\tC : D")
	require.NoError(t, err)

	q := p.DrainVerificationQueue()
	assert.NotEmpty(t, q, "inflating A and C should enqueue verification requests")
	assert.Empty(t, p.DrainVerificationQueue(), "the queue must be empty immediately after a drain")
}

func TestProgramVerificationQueueDepthBound(t *testing.T) {
	p := NewProgram(WithVerificationQueueDepth(2))
	_, err := p.AddDocumentFromText("A : B\nC : D\nE : F")
	require.NoError(t, err)

	assert.Len(t, p.DrainVerificationQueue(), 2)
}

func TestProgramSubscribeUnsubscribe(t *testing.T) {
	p := NewProgram()
	calls := 0
	unsubscribe := p.Subscribe(CauseDocumentCreate, func(Cause) { calls++ })

	_, err := p.AddDocumentFromText("A : B")
	require.NoError(t, err)
	unsubscribe()
	_, err = p.AddDocumentFromText("C : D")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "unsubscribe must stop further delivery")
}

func TestProgramMaxDocumentSizeRejectsOversizedText(t *testing.T) {
	p := NewProgram(WithMaxDocumentSize(4))
	_, err := p.AddDocumentFromText("A : B")
	assert.IsType(t, &InvalidArgumentError{}, err)
}
