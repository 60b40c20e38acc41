// Package consolidate turns raw capture events into a macro timeline.
//
// The capture layer reports every key transition, button transition and
// cursor sample as a timestamped RawEvent. A Consolidator folds that stream
// into steps in one forward pass:
//
//   - the time between events accumulates, saturating at math.MaxUint32,
//     and is emitted as a Delay step before the next distinct action when
//     it exceeds the threshold (1 ms by default);
//   - raw Delay events only contribute time;
//   - an action identical to the last emitted one (a held key repeating,
//     a cursor sample at the same position) is absorbed;
//   - time left over at the end becomes a trailing Delay step.
//
// Events whose details cannot be resolved still produce a step, with
// "Unknown Key", "Unknown Button" or a zero coordinate in place of the
// missing value, and are reported in Result.Warnings. A failure during the
// pass is recovered and reported in Result.Err together with the steps
// emitted so far.
//
// Consolidation is deterministic. Hosts that poll a growing capture simply
// run it again over the whole history.
package consolidate
