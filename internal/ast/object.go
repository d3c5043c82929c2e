package ast

// Entry is one key of an object literal.
type Entry struct {
	Key   string
	Value Value
}

// Object is an object literal with keys kept in source order.
type Object struct {
	Entries []Entry
	Pos     Pos
}

// NewObject builds an object from entries. Later duplicates replace earlier ones,
// matching how an object literal evaluates.
func NewObject(entries ...Entry) *Object {
	o := &Object{}
	for _, e := range entries {
		o = o.Set(e.Key, e.Value)
	}
	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Entries)
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	if o.Len() == 0 {
		return nil
	}
	keys := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value stored at key.
func (o *Object) Get(key string) (Value, bool) {
	if i := o.index(key); i >= 0 {
		return o.Entries[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	return o.index(key) >= 0
}

// Set returns a copy of o with key bound to v. An existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	out := o.clone()
	if i := out.index(key); i >= 0 {
		out.Entries[i].Value = v
		return out
	}
	out.Entries = append(out.Entries, Entry{Key: key, Value: v})
	return out
}

// Delete returns a copy of o without key.
func (o *Object) Delete(key string) *Object {
	out := o.clone()
	if i := out.index(key); i >= 0 {
		out.Entries = append(out.Entries[:i], out.Entries[i+1:]...)
	}
	return out
}

// Path follows nested objects along keys.
func (o *Object) Path(keys ...string) (Value, bool) {
	var cur Value = o
	for _, k := range keys {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, false
		}
		if cur, ok = obj.Get(k); !ok {
			return nil, false
		}
	}
	return cur, true
}

func (o *Object) index(key string) int {
	if o == nil {
		return -1
	}
	for i, e := range o.Entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

func (o *Object) clone() *Object {
	if o == nil {
		return &Object{}
	}
	out := &Object{Pos: o.Pos, Entries: make([]Entry, len(o.Entries), len(o.Entries)+1)}
	copy(out.Entries, o.Entries)
	return out
}
