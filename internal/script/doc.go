// Package script finds the human-readable text in visual novel script files
// (dialogue, menus, screens, translation blocks) and rebuilds edited lines
// byte for byte.
//
// Parsing is a single forward pass: an indentation-driven context stack
// decides which grammar applies to each line, and every match records the
// fragments around its text so that Reconstruct(item.Meta, item.Text)
// returns the original line. In ModeTranslate a second pass merges
// original/translated lines into Pairs.
package script
