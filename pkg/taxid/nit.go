// Package taxid normaliza y valida identificaciones tributarias colombianas (NIT y cédula).
package taxid

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalid identificación mal formada o con dígito de verificación incorrecto.
var ErrInvalid = errors.New("identificación tributaria inválida")

// pesos DIAN para el dígito de verificación (módulo 11), alineados a la derecha del NIT.
var nitWeights = [15]int{71, 67, 59, 53, 47, 43, 41, 37, 29, 23, 19, 17, 13, 7, 3}

// Normalize quita puntos y espacios. Con guion ("900.123.456-8") se exige que el último dígito
// sea el de verificación del NIT; sin guion se acepta como documento (cédula, pasaporte) en mayúsculas.
func Normalize(taxID string) (string, error) {
	s := strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, taxID)
	if s == "" {
		return "", fmt.Errorf("%w: vacía", ErrInvalid)
	}

	base, dv, hasDV := strings.Cut(s, "-")
	if !hasDV {
		for _, r := range s {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return "", fmt.Errorf("%w: carácter %q no permitido", ErrInvalid, r)
			}
		}
		return s, nil
	}

	if len(dv) != 1 || !isDigits(dv) || !isDigits(base) {
		return "", fmt.Errorf("%w: el NIT debe tener la forma 900123456-8", ErrInvalid)
	}
	expected, err := VerificationDigit(base)
	if err != nil {
		return "", err
	}
	if dv[0] != expected {
		return "", fmt.Errorf("%w: dígito de verificación esperado %c, recibido %s", ErrInvalid, expected, dv)
	}
	return base + "-" + dv, nil
}

// VerificationDigit calcula el dígito de verificación de un NIT sin guion.
func VerificationDigit(nit string) (byte, error) {
	if nit == "" || len(nit) > len(nitWeights) || !isDigits(nit) {
		return 0, fmt.Errorf("%w: NIT %q", ErrInvalid, nit)
	}
	offset := len(nitWeights) - len(nit)
	var sum int
	for i := 0; i < len(nit); i++ {
		sum += int(nit[i]-'0') * nitWeights[offset+i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
