package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary represents a PDF dictionary object.
type Dictionary interface {
	Object
	Get(key string) (Object, bool)
	Set(key string, value Object) Dictionary
	Keys() []string
	Len() int
}

// Stream represents an encoded PDF stream with its dictionary.
type Stream interface {
	Object
	Dictionary() Dictionary
	RawData() []byte
	Length() int64
}

// Reference represents an indirect object reference.
type Reference interface {
	Object
	Ref() ObjectRef
}

// Table is the set of indirect objects of a document being written, keyed by
// reference. Numbers are handed out in allocation order.
type Table struct {
	next    int
	objects map[ObjectRef]Object
}

// NewTable returns an empty table whose first allocated object number is 1.
func NewTable() *Table {
	return &Table{next: 1, objects: make(map[ObjectRef]Object)}
}

// Alloc reserves the next object number without assigning a value.
func (t *Table) Alloc() ObjectRef {
	ref := ObjectRef{Num: t.next}
	t.next++
	return ref
}

// Put assigns obj to ref, replacing any previous value.
func (t *Table) Put(ref ObjectRef, obj Object) { t.objects[ref] = obj }

// Add allocates a reference for obj and stores it.
func (t *Table) Add(obj Object) ObjectRef {
	ref := t.Alloc()
	t.objects[ref] = obj
	return ref
}

// Get returns the object stored under ref.
func (t *Table) Get(ref ObjectRef) (Object, bool) {
	o, ok := t.objects[ref]
	return o, ok
}

// Len reports the number of stored objects.
func (t *Table) Len() int { return len(t.objects) }

// Size is the xref /Size value: one past the highest allocated number.
func (t *Table) Size() int { return t.next }
