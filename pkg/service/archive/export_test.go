package archive

import (
	"time"

	"github.com/revlens-lab/revlens/pkg/domain/model"
)

// NewForTest builds an archiver without a storage client for exercising
// the naming and grouping logic
func NewForTest(bucket, prefix string, now func() time.Time) *Archiver {
	return &Archiver{
		bucket: bucket,
		prefix: prefix,
		now:    now,
	}
}

// ObjectName is exported for testing
func (a *Archiver) ObjectName(oppID model.OpportunityID, stamp time.Time) string {
	return a.objectName(oppID, stamp)
}
