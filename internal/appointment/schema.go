// SPDX-License-Identifier: Apache-2.0

package appointment

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const appointmentSchema = `
#Appointment: {
	id?:         string
	name?:       string
	department?: string
	date:        =~"^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$"
	time:        =~"^([01][0-9]|2[0-3]):[0-5][0-9]$"
	tz:          string & !=""
}
`

// Schema validates appointment records against a CUE definition.
// It is safe for concurrent use.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

// MustCompileSchema compiles the appointment schema. It panics if the
// embedded definition does not compile.
func MustCompileSchema() *Schema {
	ctx := cuecontext.New()
	v := ctx.CompileString(appointmentSchema)
	if err := v.Err(); err != nil {
		panic(fmt.Sprintf("appointment: compiling schema: %v", err))
	}
	return &Schema{ctx: ctx, root: v.LookupPath(cue.ParsePath("#Appointment"))}
}

// Validate reports whether record, encoded through its JSON field names, is a
// complete appointment: a well-formed date and time and a non-empty zone.
// Absent optional fields must be omitted from the encoding.
func (s *Schema) Validate(record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.root.Unify(s.ctx.Encode(record))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("appointment schema: %w", err)
	}
	return nil
}
