// Package review implements the line-oriented terminal loop in which a
// translation session is edited and saved.
package review
