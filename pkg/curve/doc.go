// Package curve implements affine arithmetic on short Weierstrass curves
// y² = x³ + a·x + b over a prime field, with math/big coordinates.
//
// Nothing here is constant time. The package exists to feed the discrete-log
// searches in package ecdlp, which run on curves small enough (or keys
// bounded enough) to be searched.
//
//	c := curve.FourBit()
//	Q, _ := c.ScalarBaseMultiply(big.NewInt(7))
//	fmt.Println(Q) // (0, 6)
package curve
