package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateJob(t *testing.T) {
	tests := []struct {
		name    string
		job     *IngestionJob
		wantErr error
	}{
		{
			name:    "valid job",
			job:     NewIngestionJob("uploads/a.pdf", "a.pdf"),
			wantErr: nil,
		},
		{
			name:    "nil job",
			job:     nil,
			wantErr: ErrInvalidJob,
		},
		{
			name:    "empty source path",
			job:     &IngestionJob{Id: "x", OriginalName: "a.pdf"},
			wantErr: ErrEmptySourcePath,
		},
		{
			name:    "negative attempt",
			job:     &IngestionJob{Id: "x", SourcePath: "uploads/a.pdf", Attempt: -1},
			wantErr: ErrInvalidJob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJob(tt.job)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *IndexedRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &IndexedRecord{
				Id:     "r1",
				Vector: []float32{0.1, 0.2},
				Text:   "chunk text",
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "empty vector",
			record:  &IndexedRecord{Id: "r1", Text: "chunk text"},
			wantErr: ErrEmptyVector,
		},
		{
			name:    "empty text",
			record:  &IndexedRecord{Id: "r1", Vector: []float32{0.1}},
			wantErr: ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
