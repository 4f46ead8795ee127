// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"strings"
	"sync"
)

// Reporter is used to accumulate and report diagnostics during compilation.
// Compilation never stops at the first problem: each stage reports what it
// finds and carries on so the full set can be shown to the user.
type Reporter interface {
	// Report adds the given record to the set.
	Report(Exception)
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
}

// NewReporter returns a Reporter owned by a single compilation. It is not
// safe for concurrent use.
func NewReporter() Reporter {
	return &reporter{}
}

// NewReporterConcurrent returns a concurrent-safe implementation of Reporter
// for aggregating the results of parallel compilations.
func NewReporterConcurrent() Reporter {
	return &reporterLock{
		Reporter: &reporter{},
		lock:     &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
}

func (r *reporter) Report(e Exception) {
	r.reported = append(r.reported, e)
}

func (r *reporter) Reported() []Exception {
	out := make([]Exception, len(r.reported))
	copy(out, r.reported)
	return out
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Reported()
}

// Format renders exceptions as newline-terminated messages. With firstOnly
// set only the first message is included.
func Format(es []Exception, firstOnly bool) string {
	if len(es) == 0 {
		return ""
	}
	if firstOnly {
		es = es[:1]
	}
	var b strings.Builder
	for _, e := range es {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}
