package identity

// Rotator walks a fixed profile list starting from a chosen profile. It is
// plain per-lookup state and is not safe for concurrent use.
type Rotator struct {
	profiles []Profile
	idx      int
	rotated  int
}

// NewRotator starts at the profile named start, or at the first profile when
// the name is unknown. An empty list falls back to the built-in profiles.
func NewRotator(profiles []Profile, start string) *Rotator {
	if len(profiles) == 0 {
		profiles = Profiles()
	}
	r := &Rotator{profiles: profiles}
	for i, p := range profiles {
		if p.Name == start {
			r.idx = i
			break
		}
	}
	return r
}

// Current returns the active profile.
func (r *Rotator) Current() Profile {
	return r.profiles[r.idx]
}

// Rotate advances to the next profile, wrapping around, and returns it.
func (r *Rotator) Rotate() Profile {
	r.idx = (r.idx + 1) % len(r.profiles)
	r.rotated++
	return r.profiles[r.idx]
}

// Rotations reports how many times Rotate was called.
func (r *Rotator) Rotations() int {
	return r.rotated
}
