package htlog

import "github.com/sirupsen/logrus"

// Fields is an immutable set of structured log fields: every mutator
// returns a new Fields rather than touching the receiver, the same
// copy-on-write shape nabbar-golib/logger.Fields uses.
type Fields map[string]interface{}

// NewFields returns an empty Fields.
func NewFields() Fields {
	return make(Fields)
}

func (f Fields) clone() Fields {
	res := make(Fields, len(f))
	for k, v := range f {
		res[k] = v
	}
	return res
}

// Add returns a copy of f with key set to val.
func (f Fields) Add(key string, val interface{}) Fields {
	res := f.clone()
	res[key] = val
	return res
}

// Merge returns a copy of f with every key of o added, o taking
// precedence on collision.
func (f Fields) Merge(o Fields) Fields {
	res := f.clone()
	for k, v := range o {
		res[k] = v
	}
	return res
}

// Logrus converts to the logrus.Fields shape logrus.WithFields expects.
func (f Fields) Logrus() logrus.Fields {
	res := make(logrus.Fields, len(f))
	for k, v := range f {
		res[k] = v
	}
	return res
}
