// Package brdoc sanitizes and validates Brazilian registry numbers
// (CPF for people, CNPJ for companies) using the official check digits.
package brdoc

import "unicode"

// Sanitize strips everything that is not a digit.
func Sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

func allEqual(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// ValidCPF reports whether the sanitized value is a valid CPF.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 || allEqual(cpf) {
		return false
	}
	w1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	if checkDigit(cpf, w1) != int(cpf[9]-'0') {
		return false
	}
	w2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(cpf, w2) == int(cpf[10]-'0')
}

// ValidCNPJ reports whether the sanitized value is a valid CNPJ.
func ValidCNPJ(cnpj string) bool {
	if len(cnpj) != 14 || allEqual(cnpj) {
		return false
	}
	w1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	if checkDigit(cnpj, w1) != int(cnpj[12]-'0') {
		return false
	}
	w2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(cnpj, w2) == int(cnpj[13]-'0')
}
