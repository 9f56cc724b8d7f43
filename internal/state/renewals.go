package state

import "frontoffice/internal/data"

// RenewalCandidates returns one holder per name, in first-seen order, for
// renewing into a new year. Where a name has several records, one with a phone
// or email wins over one without.
func RenewalCandidates(holders []data.SeasonTicketHolder) []data.SeasonTicketHolder {
	byName := map[string]int{}
	var out []data.SeasonTicketHolder
	for _, h := range holders {
		i, ok := byName[h.Name]
		if !ok {
			byName[h.Name] = len(out)
			out = append(out, h)
			continue
		}
		existing := out[i]
		if (h.Phone != "" && existing.Phone == "") || (h.Email != "" && existing.Email == "") {
			out[i] = h
		}
	}
	if out == nil {
		out = []data.SeasonTicketHolder{}
	}
	return out
}

// RenewalCandidates over the current holders.
func (s *State) RenewalCandidates() []data.SeasonTicketHolder {
	return RenewalCandidates(list(s, holderKind))
}
