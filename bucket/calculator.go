// Package bucket implements the bucket-id calculator (spec §4.7): maps one
// row's bucket-key columns to a bucket id, in one of three modes (fixed,
// bucket-unaware, postponed), grounded on
// original_source/bucket_id_calculator_test.cpp for the mode/error-message
// contract and its TestVariantType oracle vector for the fixed-mode row
// hash (see RowHasher doc comment).
package bucket

import (
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
)

const (
	// UnawareBucket is the num_buckets value selecting bucket-unaware mode:
	// every row maps to bucket 0, valid only for non-primary-key tables.
	UnawareBucket = -1
	// PostponeBucket is the num_buckets value selecting postponed bucket
	// assignment: every row maps to bucket -2, valid only for
	// primary-key tables (the actual bucket is assigned later by a
	// dedicated compaction pass, out of scope here).
	PostponeBucket = -2
)

// Calculator assigns a bucket id to one row's bucket-key values.
type Calculator struct {
	isPKTable  bool
	numBuckets int32
	hasher     RowHasher
}

// Create validates (isPKTable, numBuckets) per spec §4.7 and
// BucketIdCalculator::Create's exact error messages, then builds a
// Calculator using the default RowHasher.
func Create(isPKTable bool, numBuckets int32) (*Calculator, error) {
	return CreateWithHasher(isPKTable, numBuckets, DefaultRowHasher{})
}

// CreateWithHasher is Create with an injectable RowHasher, for testing
// determinism and mode behavior without depending on the exact mixer.
func CreateWithHasher(isPKTable bool, numBuckets int32, hasher RowHasher) (*Calculator, error) {
	if numBuckets != UnawareBucket && numBuckets != PostponeBucket && numBuckets <= 0 {
		return nil, fmt.Errorf("num buckets must be -1 or -2 or greater than 0")
	}
	if numBuckets == UnawareBucket && isPKTable {
		return nil, fmt.Errorf("DynamicBucketMode or CrossPartitionBucketMode cannot calculate bucket id")
	}
	if numBuckets == PostponeBucket && !isPKTable {
		return nil, fmt.Errorf("Append table not support PostponeBucketMode")
	}
	return &Calculator{isPKTable: isPKTable, numBuckets: numBuckets, hasher: hasher}, nil
}

// CalculateBucketIds fills ids[i] with the bucket id for rows[i]'s
// bucket-key values (spec §4.7: fixed mode hashes and reduces, the other
// two modes are constant).
func (c *Calculator) CalculateBucketIds(rows [][]literal.Literal, ids []int32) error {
	if len(rows) != len(ids) {
		return fmt.Errorf("rows and ids must have the same length")
	}
	for i, row := range rows {
		id, err := c.CalculateBucketID(row)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	return nil
}

// CalculateBucketID computes the bucket id for a single row's bucket-key
// values.
func (c *Calculator) CalculateBucketID(bucketKey []literal.Literal) (int32, error) {
	switch c.numBuckets {
	case UnawareBucket:
		metrics.BucketAssignmentsByMode.WithLabelValues("unaware").Inc()
		return 0, nil
	case PostponeBucket:
		metrics.BucketAssignmentsByMode.WithLabelValues("postpone").Inc()
		return PostponeBucket, nil
	default:
		hash, err := c.hasher.Hash(bucketKey)
		if err != nil {
			return 0, err
		}
		metrics.BucketAssignmentsByMode.WithLabelValues("fixed").Inc()
		return int32((hash & 0x7fffffff) % uint32(c.numBuckets)), nil
	}
}
