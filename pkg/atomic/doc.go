// Package atomic is the catalogue of observational leaf behaviors used to compose
// driving scenarios: trigger conditions that succeed once the world reaches some
// state, and criteria that fail once a safety property is violated.
//
// Leaves read actor state through World and time through Clock. Both are plain
// interfaces so a Provider and a Clock owned by the run can be passed by reference.
package atomic
