package internal

// status is any enumerated status guarded by a transition table.
type status[S any] interface {
	~string
	CanMoveTo(S) error
}

// moveTo applies next to cur when set and different from it.
func moveTo[S status[S]](cur *S, next *S) error {
	if next == nil || *next == *cur {
		return nil
	}
	if err := (*cur).CanMoveTo(*next); err != nil {
		return err
	}
	*cur = *next
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
