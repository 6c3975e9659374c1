package services

// Services defined in this package:
// - BuddyService: opt-in/opt-out, current match lookup, meetings and matching runs
