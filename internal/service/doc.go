// Package service contains the application service layer, which
// coordinates the generation driver and the creation cache behind
// interfaces the HTTP handlers consume.
package service
