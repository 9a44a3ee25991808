// Package limiters contains the Redis-backed account lockout tracker: a
// rolling failure counter plus a cooldown lock marker. Counters live under
// their own key prefixes and are invisible to the session store.
package limiters
