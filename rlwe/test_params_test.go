package rlwe

var (
	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		// one prime per digit
		{
			LogN:      4,
			LogQ:      []int{20, 20, 20},
			LogP:      []int{21},
			DigitSize: 1,
			VecWidth:  1,
		},
		// two primes per digit, last digit truncated
		{
			LogN:      4,
			LogQ:      []int{20, 20, 20},
			LogP:      []int{21, 21},
			DigitSize: 2,
			VecWidth:  2,
		},
		// single digit
		{
			LogN:      10,
			LogQ:      []int{30, 30, 30},
			LogP:      []int{31},
			DigitSize: 3,
			VecWidth:  4,
		},
		// default digit size and width
		{
			LogN: 10,
			LogQ: []int{45, 35, 35, 35},
			LogP: []int{50, 50},
		},
	}
)
