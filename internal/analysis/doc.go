// Package analysis characterises recorded vertex trajectories.
//
//   - [PowerSpectrum] and [DominantFrequency]: how fast a vertex oscillates
//   - [SettleTime]: when the oscillation has died down
//
// A sheet that rings at a frequency near sqrt(k/m)/2π after a pull is
// behaving; a dominant frequency near the Nyquist limit usually means the
// time step is too large for the stiffness.
package analysis
