package telemetry

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// CameraTrace is one camera's state at a sampled tick. Angles are radians.
type CameraTrace struct {
	Tick     int64   `csv:"tick"`
	Camera   uint32  `csv:"camera"`
	Target   uint32  `csv:"target"`
	Active   bool    `csv:"active"`
	Yaw      float64 `csv:"yaw"`
	Pitch    float64 `csv:"pitch"`
	Roll     float64 `csv:"roll"`
	PosX     float64 `csv:"pos_x"`
	PosY     float64 `csv:"pos_y"`
	PosZ     float64 `csv:"pos_z"`
	PointX   float64 `csv:"point_x"`
	PointY   float64 `csv:"point_y"`
	PointZ   float64 `csv:"point_z"`
	OffsetZ  float64 `csv:"offset_z"`
	Distance float64 `csv:"distance"`
}

// TraceWriter appends CameraTrace rows as CSV, writing the header once.
type TraceWriter struct {
	w             io.Writer
	headerWritten bool
	rows          int
}

// NewTraceWriter creates a trace writer on w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// Write appends records. An empty batch writes nothing.
func (t *TraceWriter) Write(records []CameraTrace) error {
	if t == nil || len(records) == 0 {
		return nil
	}
	if err := writeCSV(t.w, records, !t.headerWritten); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	t.headerWritten = true
	t.rows += len(records)
	return nil
}

// Rows returns the number of rows written so far.
func (t *TraceWriter) Rows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

func writeCSV(w io.Writer, records any, header bool) error {
	if header {
		return gocsv.Marshal(records, w)
	}
	return gocsv.MarshalWithoutHeaders(records, w)
}
