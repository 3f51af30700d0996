// Package annotate computes the merged listening statistics written onto a
// duplicate group's keeper.
//
// The merge is pure and order-independent: play counts are summed, the best
// rating wins, starred is sticky, and the latest timestamps survive. Because
// the combination is commutative and associative, recomputing it for the
// same member set always yields the same record.
package annotate
