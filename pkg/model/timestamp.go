package model

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a time serialized to JSON as unix seconds
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	ts := time.Time(t).Unix()
	stamp := fmt.Sprint(ts)
	return []byte(stamp), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	ts, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}

	*t = Timestamp(time.Unix(ts, 0))
	return nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
