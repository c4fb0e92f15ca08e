package profile

import (
	"time"

	"github.com/oggyb/swipematch/internal/db"
)

// Age returns completed years between birthdate and now, or nil when the
// birthdate is unknown.
func Age(birthdate, now time.Time) *int {
	if birthdate.IsZero() {
		return nil
	}
	years := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() || (now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		years--
	}
	return &years
}

// PrimaryPhoto picks the flagged primary photo, else the first by position.
// photos must be in display order, as GetByID loads them.
func PrimaryPhoto(photos []db.Photo) *db.Photo {
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		if photos[i].IsPrimary {
			return &photos[i]
		}
	}
	return &photos[0]
}

// PrimaryPhotoURL is the URL of PrimaryPhoto, empty when the user has none.
func PrimaryPhotoURL(u *db.User) string {
	if p := PrimaryPhoto(u.Photos); p != nil {
		return p.URL
	}
	return ""
}
