// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/reporter"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

const schemaPath = "inputseq/v1/sequence.proto"

//go:embed sequence.proto
var schema string

type Format uint8

const (
	FormatBinary Format = iota
	FormatJSON
)

// Encoder converts compiled sequences to and from the inputseq.v1.Sequence
// message. The message types are built at runtime from the embedded schema.
type Encoder struct {
	sequence   protoreflect.MessageDescriptor
	interval   protoreflect.MessageDescriptor
	diagnostic protoreflect.MessageDescriptor
}

func NewEncoder(ctx context.Context) (*Encoder, error) {
	return newEncoder(ctx, map[string]string{schemaPath: schema})
}

func newEncoder(ctx context.Context, sources map[string]string) (*Encoder, error) {
	r := exc.NewReporter()
	c := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		},
		Reporter: &protoReporter{Reporter: r},
	}
	files, err := c.Compile(ctx, schemaPath)
	if caught := r.Reported(); len(caught) > 0 {
		errs := make([]error, 0, len(caught))
		for _, e := range caught {
			errs = append(errs, e)
		}
		return nil, errors.Join(errs...)
	}
	if err != nil {
		return nil, schemaError(err)
	}
	messages := files[0].Messages()
	e := &Encoder{
		sequence:   messages.ByName("Sequence"),
		interval:   messages.ByName("Interval"),
		diagnostic: messages.ByName("Diagnostic"),
	}
	if e.sequence == nil || e.interval == nil || e.diagnostic == nil {
		return nil, exc.New(exc.Location{URI: schemaPath}, exc.CodeSchemaError, "schema does not declare Sequence, Interval and Diagnostic")
	}
	return e, nil
}

// Message builds the inputseq.v1.Sequence message for s.
func (self *Encoder) Message(s *sequence.Sequence) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(self.sequence)
	fields := self.sequence.Fields()
	msg.Set(fields.ByName("years_to_maturity"), protoreflect.ValueOfInt32(int32(s.YearsToMaturity())))
	if s.Valid() {
		canonical, err := s.Canonical()
		if err != nil {
			return nil, err
		}
		msg.Set(fields.ByName("canonical"), protoreflect.ValueOfString(canonical))
	}

	intervals := msg.Mutable(fields.ByName("intervals")).List()
	for _, in := range s.Intervals() {
		intervals.Append(protoreflect.ValueOfMessage(self.intervalMessage(in)))
	}
	numbers, keywords := s.Realized()
	numberList := msg.Mutable(fields.ByName("numbers")).List()
	for _, n := range numbers {
		numberList.Append(protoreflect.ValueOfFloat64(n))
	}
	keywordList := msg.Mutable(fields.ByName("keywords")).List()
	for _, k := range keywords {
		keywordList.Append(protoreflect.ValueOfString(k))
	}
	diagnostics := msg.Mutable(fields.ByName("diagnostics")).List()
	for _, e := range s.Exceptions() {
		d := dynamicpb.NewMessage(self.diagnostic)
		df := self.diagnostic.Fields()
		d.Set(df.ByName("code"), protoreflect.ValueOfString(e.Code()))
		d.Set(df.ByName("message"), protoreflect.ValueOfString(e.Message()))
		d.Set(df.ByName("column"), protoreflect.ValueOfInt32(int32(e.Location().Column())))
		diagnostics.Append(protoreflect.ValueOfMessage(d))
	}
	return msg, nil
}

func (self *Encoder) intervalMessage(in sequence.Interval) *dynamicpb.Message {
	m := dynamicpb.NewMessage(self.interval)
	f := self.interval.Fields()
	m.Set(f.ByName("begin"), protoreflect.ValueOfInt32(int32(in.Begin)))
	m.Set(f.ByName("end"), protoreflect.ValueOfInt32(int32(in.End)))
	m.Set(f.ByName("begin_mode"), protoreflect.ValueOfEnum(protoreflect.EnumNumber(in.BeginMode)))
	m.Set(f.ByName("end_mode"), protoreflect.ValueOfEnum(protoreflect.EnumNumber(in.EndMode)))
	switch v := in.Value.(type) {
	case sequence.Number:
		m.Set(f.ByName("number"), protoreflect.ValueOfFloat64(float64(v)))
	case sequence.Keyword:
		m.Set(f.ByName("keyword"), protoreflect.ValueOfString(string(v)))
	}
	return m
}

func (self *Encoder) Marshal(s *sequence.Sequence, format Format) ([]byte, error) {
	msg, err := self.Message(s)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatBinary:
		return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
	case FormatJSON:
		return protojson.Marshal(msg)
	}
	return nil, fmt.Errorf("unknown export format %d", format)
}

// Decode reads an encoded inputseq.v1.Sequence and returns its canonical
// text. A message that carries diagnostics has no canonical text and
// decodes to an error wrapping sequence.ErrInvalidInput.
func (self *Encoder) Decode(data []byte, format Format) (string, error) {
	msg := dynamicpb.NewMessage(self.sequence)
	var err error
	switch format {
	case FormatBinary:
		err = proto.Unmarshal(data, msg)
	case FormatJSON:
		err = protojson.Unmarshal(data, msg)
	default:
		err = fmt.Errorf("unknown export format %d", format)
	}
	if err != nil {
		return "", err
	}
	fields := self.sequence.Fields()
	diagnostics := msg.Get(fields.ByName("diagnostics")).List()
	if diagnostics.Len() > 0 {
		first := diagnostics.Get(0).Message()
		df := self.diagnostic.Fields()
		return "", fmt.Errorf(
			"%w: %s: %s",
			sequence.ErrInvalidInput,
			first.Get(df.ByName("code")).String(),
			first.Get(df.ByName("message")).String(),
		)
	}
	return msg.Get(fields.ByName("canonical")).String(), nil
}

// schemaError attributes an error that bypassed the reporter to the schema.
func schemaError(err error) error {
	if e, ok := err.(exc.Exception); ok {
		return e
	}
	return exc.WrapUnknown(exc.Location{URI: schemaPath}, err)
}

// protoReporter routes schema diagnostics into an exc.Reporter. The first
// error stops compilation.
type protoReporter struct {
	Reporter exc.Reporter
}

func (self *protoReporter) Error(e reporter.ErrorWithPos) error {
	pos := e.GetPosition()
	loc := exc.Location{
		URI:      pos.Filename,
		Location: syntax.Location{Position: pos.Col - 1},
	}
	wrapped := exc.Wrap(loc, exc.CodeSchemaError, e)
	self.Reporter.Report(wrapped)
	return wrapped
}

func (self *protoReporter) Warning(e reporter.ErrorWithPos) {
	_ = self.Error(e)
}
