package aggregates

// WriteTxOwnership says who opens the transaction around an aggregate write.
type WriteTxOwnership string

const (
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// Concurrency names how an aggregate resolves two writers racing on the same row.
type Concurrency string

const (
	// ConcurrencyTransactional relies on the transaction alone; a lost race
	// surfaces to the caller as a conflict.
	ConcurrencyTransactional Concurrency = "transactional"
	// ConcurrencyVersionCAS guards rows with a version column and reruns the
	// whole write after a stale read.
	ConcurrencyVersionCAS Concurrency = "version_cas"
)

// Contract is the self-description every aggregate publishes.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	Concurrency      Concurrency
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

func (c Contract) RetriesOnVersionConflict() bool {
	return c.Concurrency == ConcurrencyVersionCAS
}
