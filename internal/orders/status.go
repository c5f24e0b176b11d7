package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// validNext lists the accepted targets per current status. Only cancelled is
// absorbing; the forward path pending→processing→shipped→delivered is not
// enforced.
var validNext = map[Status]map[Status]bool{
	StatusPending:    allStatuses(),
	StatusProcessing: allStatuses(),
	StatusShipped:    allStatuses(),
	StatusDelivered:  allStatuses(),
	StatusCancelled:  {},
}

func allStatuses() map[Status]bool {
	return map[Status]bool{
		StatusPending:    true,
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
		StatusCancelled:  true,
	}
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// ParseStatus accepts exactly the five lowercase status names.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
