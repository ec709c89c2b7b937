// SPDX-License-Identifier: ice License 1.0

package terror

import (
	"github.com/pkg/errors"
)

func New(err error, data map[string]any) *Err {
	return &Err{error: err, Data: data}
}

func WithCode(err error, code int, data map[string]any) *Err {
	return &Err{error: err, Data: data, Code: code}
}

func As(err error) *Err {
	tErr := new(Err)
	if ok := errors.As(err, tErr); ok {
		return tErr
	}

	return nil
}

// CodeOf returns the code of the first *Err in the chain, or 0.
func CodeOf(err error) int {
	if tErr := As(err); tErr != nil {
		return tErr.Code
	}

	return 0
}

func (e *Err) Is(er error) bool {
	return errors.Is(er, e.error)
}

func (e *Err) Unwrap() error {
	return e.error
}

func (e *Err) As(err any) bool {
	o, ok := err.(*Err)
	if ok {
		*o = *e
	}

	return ok
}
