// Package regress fits the validation model: a logistic regression of the
// default outcome on the continuous credit score. The fit uses Newton
// iterations on the log-likelihood and reports Wald inference alongside
// goodness-of-fit measures.
package regress
