// Package config holds the projection policy shared by every component of a
// run, plus the HCL file loader used by the command line tool.
package config
