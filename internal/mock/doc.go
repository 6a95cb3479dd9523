// Package mock implements a stand-in DREAM server speaking the wire
// contract, so the observatory control system can be developed and tested
// before the real instrument is reachable.
package mock
