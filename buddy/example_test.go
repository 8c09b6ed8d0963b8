package buddy

import "fmt"

func Example() {
	a, _ := InitOnHeap(1 << 20)

	p1 := a.Alloc(100)  // fits a class-7 chunk (128 bytes) after header
	p2 := a.Alloc(5000) // needs class-13 (8192 bytes)

	fmt.Printf("p1 valid: %v\n", a.IsValidOffset(p1))
	fmt.Printf("p2 valid: %v\n", a.IsValidOffset(p2))

	a.Free(p1)
	a.Free(p2)

	// Output:
	// p1 valid: true
	// p2 valid: true
}
