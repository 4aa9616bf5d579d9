// Package layout turns one day of schedule data into printable schedule pages.
//
// The layout package has three stages. The slot classifier (DetectSlots) picks the
// time slots that become rows of the printed grid and labels plenum events as
// keynote, lunch, raffle or registration. The width estimator (Estimator) predicts
// how wide each room column prints from its wrapped display name. The partitioner
// (Partition) splits the alphabetically sorted rooms across the fewest landscape
// pages whose columns fit the printable content width.
//
// Build runs all three stages and Rows produces the grid rows of a page, including
// plenum blocks that span every room column without a regular session.
//
// Nothing here is cached or randomized: identical input yields identical pages.
package layout
