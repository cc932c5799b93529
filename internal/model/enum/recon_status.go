package enum

// ReconStatus is the outcome of one position-reconciliation cycle (§4.4).
type ReconStatus uint8

const (
	_recon_status_beg ReconStatus = iota
	ReconStatusNoGap
	ReconStatusTolerableGap
	ReconStatusIntolerableGap
	ReconStatusUndeterminedGap
	ReconStatusFailedQuery
	_recon_status_end
)

func (s ReconStatus) IsAvailable() bool {
	return s > _recon_status_beg && s < _recon_status_end
}

func (s ReconStatus) String() string {
	switch s {
	case ReconStatusNoGap:
		return "no_gap"
	case ReconStatusTolerableGap:
		return "tolerable_gap"
	case ReconStatusIntolerableGap:
		return "intolerable_gap"
	case ReconStatusUndeterminedGap:
		return "undetermined_gap"
	case ReconStatusFailedQuery:
		return "failed_query"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the recon loop must exit on this status (§4.4).
func (s ReconStatus) IsTerminal() bool {
	switch s {
	case ReconStatusIntolerableGap, ReconStatusFailedQuery:
		return true
	default:
		return false
	}
}
