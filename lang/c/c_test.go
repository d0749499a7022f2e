package c

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

func newStore(t *testing.T) *graphstore.Store {
	t.Helper()
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParseSourceHelloWorld(t *testing.T) {
	source := `
#include <stdio.h>

int main() {
    printf("Hello, World!\n");
    return 0;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "hello.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 1)
	require.Len(t, info.Imports, 1)
}

func TestParseSourceMultipleFunctions(t *testing.T) {
	source := `
int add(int a, int b) {
    return a + b;
}

int subtract(int a, int b) {
    return a - b;
}

int multiply(int a, int b) {
    return a * b;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "math.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 3)
}

func TestParseSourceStructWithTypedef(t *testing.T) {
	source := `
struct Node {
    int data;
    struct Node *next;
};

typedef struct Node Node;

Node* create_node(int data) {
    return NULL;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "node.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceEnum(t *testing.T) {
	source := `
enum Status {
    OK = 0,
    ERROR = 1,
    PENDING = 2
};

int get_status() {
    return OK;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "status.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceUnion(t *testing.T) {
	source := `
union Data {
    int i;
    float f;
    char str[20];
};

void process_data(union Data *d) {
    d->i = 10;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "data.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceStaticFunctions(t *testing.T) {
	source := `
static int helper(int x) {
    return x * 2;
}

int public_func(int x) {
    return helper(x) + 1;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "module.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceMultipleIncludes(t *testing.T) {
	source := `
#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include "myheader.h"

void test() {}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "test.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Imports, 4)
}

func TestParseSourcePointerParameters(t *testing.T) {
	source := `
void swap(int *a, int *b) {
    int temp = *a;
    *a = *b;
    *b = temp;
}

void process_array(int arr[], int size) {
}

void process_strings(char **strings, int count) {
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "pointers.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 3)
}

func TestParseSourceVariadicFunction(t *testing.T) {
	source := `
#include <stdarg.h>

int sum(int count, ...) {
    va_list args;
    va_start(args, count);

    int total = 0;
    for (int i = 0; i < count; i++) {
        total += va_arg(args, int);
    }

    va_end(args);
    return total;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "varargs.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceComplexFunction(t *testing.T) {
	source := `
int complex_function(int x, int y) {
    int result = 0;

    if (x > 0) {
        for (int i = 0; i < x; i++) {
            if (i % 2 == 0) {
                result += i;
            } else {
                result -= i;
            }
        }
    } else if (x < 0) {
        while (y > 0) {
            result += y;
            y--;
        }
    } else {
        switch (y) {
            case 1:
                result = 100;
                break;
            default:
                result = 0;
                break;
        }
    }

    return result;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "complex.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 1)
}

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("header.h"))
	require.True(t, f.CanParse("source.c"))
	require.False(t, f.CanParse("source.cpp"))
	require.False(t, f.CanParse("source.rs"))
}

func TestParseSourceNestedStructs(t *testing.T) {
	source := `
struct Address {
    char street[100];
    char city[50];
    int zip;
};

struct Person {
    char name[100];
    int age;
    struct Address address;
};
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "person.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Classes, 2)
}

func TestParseSourceSyntaxErrorFailsInStrictMode(t *testing.T) {
	source := `
int broken( {
    // Missing closing brace
`
	f := New(parser.DefaultConfig())
	_, err := f.ParseSource(source, "broken.c", newStore(t))
	require.Error(t, err)
}

func TestParseSourceSyntaxErrorToleratedInTolerantMode(t *testing.T) {
	source := `
int broken( {
    // Missing closing brace
`
	cfg := parser.DefaultConfig()
	cfg.Extra["c_mode"] = string(ModeTolerant)
	f := New(cfg)
	_, err := f.ParseSource(source, "broken.c", newStore(t))
	require.NoError(t, err)
	diag := f.LastDiagnostics()
	require.NotNil(t, diag)
	require.True(t, diag.IsPartial)
	require.Greater(t, diag.Errors.Total(), 0)
}

func TestParseSourceEmptyFile(t *testing.T) {
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource("", "empty.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 0)
	require.Len(t, info.Classes, 0)
}

func TestParseSourceCommentsOnly(t *testing.T) {
	source := `
// This is a comment
/* This is a
   multi-line comment */
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "comments.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 0)
}

func TestParseSourceFunctionPointerParam(t *testing.T) {
	source := `
void register_callback(void (*callback)(int)) {
}

void process(int (*compare)(const void*, const void*)) {
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "callbacks.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceConstParams(t *testing.T) {
	source := `
void print_string(const char *str) {
}

int compare(const int *a, const int *b) {
    return *a - *b;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "const.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceGoto(t *testing.T) {
	source := `
void cleanup(int *resources, int count) {
    for (int i = 0; i < count; i++) {
        if (resources[i] < 0) {
            goto error;
        }
    }
    return;

error:
    return;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "goto.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 1)
}

func TestParseSourceTernary(t *testing.T) {
	source := `
int max(int a, int b) {
    return a > b ? a : b;
}

int abs_val(int x) {
    return x >= 0 ? x : -x;
}
`
	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(source, "ternary.c", newStore(t))
	require.NoError(t, err)
	require.Len(t, info.Functions, 2)
}

func TestParseSourceKernelModuleDetectsLinuxPlatform(t *testing.T) {
	source := `
#include <linux/module.h>
#include <linux/kernel.h>
#include <linux/init.h>

MODULE_LICENSE("GPL");
MODULE_AUTHOR("test");

static int __init my_init(void)
{
	printk(KERN_INFO "loaded\n");
	return 0;
}

static void __exit my_exit(void)
{
	printk(KERN_INFO "unloaded\n");
}

module_init(my_init);
module_exit(my_exit);
`
	cfg := parser.DefaultConfig()
	cfg.Extra["c_mode"] = string(ModeKernel)
	f := New(cfg)
	info, err := f.ParseSource(source, "mymod.c", newStore(t))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(info.Functions), 2)

	diag := f.LastDiagnostics()
	require.NotNil(t, diag)
	require.Equal(t, "linux", diag.Platform.PlatformID)
	require.Greater(t, diag.Platform.Confidence, float32(0.5))
}
