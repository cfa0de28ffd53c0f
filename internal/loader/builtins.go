package loader

// builtins maps a `zena:`-prefixed specifier to its bundled source, the
// built-in module family spec.md §6 names via the `zena:iterator` example.
// The iterator protocol itself is the desugaring target spec.md §9 assumes
// for `for x in iter`: a `next()` method returning an unboxed tagged pair
// whose first element is false once iteration is exhausted.
var builtins = map[string]string{
	"zena:iterator": iteratorSource,
}

const iteratorSource = `package zena.iterator

pub interface Iterator<T> {
    fn next() -> #(bool, T);
}

pub interface Iterable<T> {
    fn iterator() -> Iterator<T>;
}
`
