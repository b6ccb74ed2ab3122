package limiter

import (
	"context"
	"fmt"
)

func ExampleMemoryLimiter() {
	l := NewMemoryLimiter()

	perMinute := Constraint{Max: 2, Seconds: 60}
	perHour := Constraint{Max: 100, Seconds: 3600}

	for range 3 {
		ok, err := l.Check(context.Background(), "user_123", perMinute, perHour)
		if err != nil {
			panic(err)
		}
		fmt.Println(ok)
	}
	// Output:
	// true
	// true
	// false
}

func ExampleKeyname() {
	fmt.Println(Keyname("user_123", 60))
	// Output:
	// limiter:{n:user_123}:60
}
