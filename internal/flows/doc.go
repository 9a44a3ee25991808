// Package flows contains the session lifecycle flow runners. Each runner
// takes an explicit deps struct and returns a result with a failure kind,
// leaving sentinel mapping, auditing, and metrics to the Service façade.
//
// The refresh runner implements the ordered rotation protocol: validate the
// presented record, store the replacement with its full TTL, read it back to
// confirm the write persisted, and only then retire the old record. The old
// credential stays fully valid until the replacement is confirmed durable;
// retiring marks it superseded rather than deleting it, so a later replay is
// detected as reuse until the record's TTL fires.
package flows
