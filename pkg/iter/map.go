package iter

// MapErr maps xs with fun and stops at the first error.
func MapErr[F any, T any](xs []F, fun func(F) (T, error)) ([]T, error) {
	result := make([]T, len(xs))

	for i, x := range xs {
		var err error

		result[i], err = fun(x)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// FilterMapErr is MapErr that drops the items fun returns false for.
func FilterMapErr[F any, T any](xs []F, fun func(F) (T, bool, error)) ([]T, error) {
	result := make([]T, 0, len(xs))

	for _, x := range xs {
		item, ok, err := fun(x)
		if err != nil {
			return nil, err
		}

		if ok {
			result = append(result, item)
		}
	}

	return result, nil
}

// FlatMapErr concatenates the slices fun returns for each item of xs.
func FlatMapErr[F any, T any](xs []F, fun func(F) ([]T, error)) ([]T, error) {
	result := []T{}

	for _, x := range xs {
		items, err := fun(x)
		if err != nil {
			return nil, err
		}

		result = append(result, items...)
	}

	return result, nil
}
