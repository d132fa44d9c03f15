// Package console implements the interactive text front end.
//
// It offers the numbered menu (new field, add start, add end, add obstacle,
// find path, field stats, print field, end program) together with word
// commands such as "start 2 3" or "save field.yaml". Coordinates are
// 1-indexed on screen and translated to the grid's zero-based positions.
package console
