package validation

import "github.com/ignite/deliverability-engine/internal/domain"

// ValidateList partitions addresses in a single case-insensitive pass.
// Duplicate detection runs before the format and disposable checks, so a
// repeated malformed entry is counted once as invalid and then as duplicate.
// Bucket entries are normalized addresses.
func (v *Validator) ValidateList(addresses []string) domain.ListValidationReport {
	report := domain.ListValidationReport{
		Valid:      []string{},
		Invalid:    []string{},
		Duplicates: []string{},
		Disposable: []string{},
	}

	seen := make(map[string]struct{}, len(addresses))
	for _, raw := range addresses {
		addr := domain.NormalizeAddress(raw)

		if _, dup := seen[addr]; dup {
			report.Duplicates = append(report.Duplicates, addr)
			continue
		}
		seen[addr] = struct{}{}

		switch {
		case !IsValidFormat(addr):
			report.Invalid = append(report.Invalid, addr)
		case v.IsDisposable(addr):
			report.Disposable = append(report.Disposable, addr)
		default:
			report.Valid = append(report.Valid, addr)
		}
	}

	total := len(addresses)
	report.Report = domain.ListSummary{
		Total:           total,
		ValidCount:      len(report.Valid),
		InvalidCount:    len(report.Invalid),
		DuplicateCount:  len(report.Duplicates),
		DisposableCount: len(report.Disposable),
	}
	if total > 0 {
		report.Report.ValidityRate = float64(len(report.Valid)) / float64(total) * 100
	}
	return report
}

// IsDisposable reports whether the address domain is on the disposable list.
func (v *Validator) IsDisposable(address string) bool {
	_, ok := v.disposable[domain.DomainOf(address)]
	return ok
}
