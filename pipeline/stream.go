package pipeline

// Load streams hp prime by prime: for each row it emits the prime index
// on primes and the N coefficients of the row as N/VecWidth vectors on coeffs.
// hp is expected to be valid (see [HostPoly.Validate]).
func (ctx Context) Load(hp HostPoly) (primes <-chan int, coeffs <-chan Vec) {

	outP, outC := ctx.channelInt(), ctx.channelVec()

	go func() {
		defer close(outP)
		defer close(outC)
		N := ctx.N()
		for i, idx := range hp.Primes {
			outP <- idx
			emitRow(outC, hp.Row(N, i), ctx.VecWidth())
		}
	}()

	return outP, outC
}

// Tee duplicates the prime-index stream in.
// Tokens are written on out1 before out2.
func (ctx Context) Tee(in <-chan int) (out1, out2 <-chan int) {

	o1, o2 := ctx.channelInt(), ctx.channelInt()

	go func() {
		defer close(o1)
		defer close(o2)
		for idx := range in {
			o1 <- idx
			o2 <- idx
		}
	}()

	return o1, o2
}

// Store collects the stream (primes, coeffs) into a [HostPoly].
// It blocks until primes is closed.
func (ctx Context) Store(primes <-chan int, coeffs <-chan Vec) (hp HostPoly) {
	N := ctx.N()
	for idx := range primes {
		row := make([]uint64, N)
		collectRow(coeffs, row)
		hp.Primes = append(hp.Primes, idx)
		hp.Coeffs = append(hp.Coeffs, row...)
	}
	return
}

// emitRow sends row as vectors of vec lanes on out.
func emitRow(out chan<- Vec, row []uint64, vec int) {
	for a := 0; a < len(row); a += vec {
		v := make(Vec, vec)
		copy(v, row[a:a+vec])
		out <- v
	}
}

// collectRow receives vectors from in until row is filled.
// Panics if in is closed before.
func collectRow(in <-chan Vec, row []uint64) {
	for a := 0; a < len(row); {
		v, ok := <-in
		if !ok {
			panic("coefficient stream closed in the middle of a row")
		}
		a += copy(row[a:], v)
	}
}
