// Package policy is the access and audit decision engine. It decides who may
// delete what, who may manage whom, and what a role change records. Every
// function is pure: loading and persisting state belongs to the caller.
package policy
