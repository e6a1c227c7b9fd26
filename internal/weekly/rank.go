package weekly

import "sort"

// Standing is a leaderboard row: a viewer's total over every recorded day.
type Standing struct {
	Name            string `json:"name"`
	ProfileImageURL string `json:"profileImageUrl"`
	TotalSeconds    int64  `json:"studyTime"`
	Studying        bool   `json:"isStudying"`
}

// Rank orders users by total study time, highest first. Ties keep input order.
func Rank(users []Profile) []Standing {
	out := make([]Standing, 0, len(users))
	for _, u := range users {
		var total int64
		for _, r := range u.DailyRecords {
			total += r.StudyTimeSeconds
		}
		out = append(out, Standing{
			Name:            u.Name,
			ProfileImageURL: u.ProfileImageURL,
			TotalSeconds:    total,
			Studying:        u.Studying,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSeconds > out[j].TotalSeconds
	})
	return out
}
