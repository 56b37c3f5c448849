// Package batch reads and writes plain text batch files. Each line holds a
// text to translate, optionally followed by "= translation".
package batch
