package pipeline

import "strings"

// LinuxPlatform is the only fully-populated PlatformModule this module
// ships. Its detection weights, header stub catalogue, and attribute
// list are authored directly from real Linux kernel module conventions
// (linux/ include detection, MODULE_LICENSE/MODULE_AUTHOR, the
// linux/types.h typedef stub, __init/__exit/__user/__percpu/
// EXPORT_SYMBOL attributes), tuned so MODULE_LICENSE("GPL"),
// printk(KERN_INFO ...), module_init(...) drive confidence above 0.5
// for a small init-module snippet.
type LinuxPlatform struct {
	stubs *HeaderStubs
}

// NewLinuxPlatform builds the Linux platform catalogue.
func NewLinuxPlatform() *LinuxPlatform {
	stubs := NewHeaderStubs()
	stubs.Add("linux/types.h", strings.Join([]string{
		"typedef unsigned char u8;",
		"typedef unsigned short u16;",
		"typedef unsigned int u32;",
		"typedef unsigned long long u64;",
		"typedef signed char s8;",
		"typedef signed short s16;",
		"typedef signed int s32;",
		"typedef signed long long s64;",
		"typedef unsigned long size_t;",
		"typedef long ssize_t;",
		"typedef unsigned int dev_t;",
		"typedef unsigned short umode_t;",
		"typedef int pid_t;",
	}, "\n"))
	stubs.Add("linux/kernel.h", strings.Join([]string{
		"extern int printk(const char *fmt, ...);",
		"#define KERN_INFO \"\"",
		"#define KERN_ERR \"\"",
		"#define KERN_WARNING \"\"",
		"#define KERN_DEBUG \"\"",
	}, "\n"))
	stubs.Add("linux/module.h", strings.Join([]string{
		"#define MODULE_LICENSE(x)",
		"#define MODULE_AUTHOR(x)",
		"#define MODULE_DESCRIPTION(x)",
		"#define MODULE_VERSION(x)",
	}, "\n"))
	stubs.Add("linux/init.h", strings.Join([]string{
		"#define __init",
		"#define __exit",
	}, "\n"))
	stubs.Add("linux/slab.h", strings.Join([]string{
		"extern void *kmalloc(size_t size, unsigned int flags);",
		"extern void *kzalloc(size_t size, unsigned int flags);",
		"extern void kfree(const void *ptr);",
	}, "\n"))
	stubs.Add("linux/mutex.h", strings.Join([]string{
		"typedef struct mutex { int counter; } mutex;",
		"extern void mutex_lock(struct mutex *lock);",
		"extern void mutex_unlock(struct mutex *lock);",
	}, "\n"))

	return &LinuxPlatform{stubs: stubs}
}

func (p *LinuxPlatform) ID() string   { return "linux" }
func (p *LinuxPlatform) Name() string { return "Linux Kernel" }

func (p *LinuxPlatform) DetectionPatterns() []DetectionPattern {
	return []DetectionPattern{
		{Kind: DetectionInclude, Pattern: "linux/", Weight: 3.0},
		{Kind: DetectionMacro, Pattern: "MODULE_LICENSE", Weight: 3.0},
		{Kind: DetectionMacro, Pattern: "MODULE_AUTHOR", Weight: 2.0},
		{Kind: DetectionMacro, Pattern: "MODULE_DESCRIPTION", Weight: 1.0},
		{Kind: DetectionMacro, Pattern: "__init", Weight: 1.5},
		{Kind: DetectionMacro, Pattern: "__exit", Weight: 1.0},
		{Kind: DetectionMacro, Pattern: "EXPORT_SYMBOL", Weight: 1.5},
		{Kind: DetectionMacro, Pattern: "KERN_INFO", Weight: 1.0},
		{Kind: DetectionFunctionCall, Pattern: "printk", Weight: 1.5},
		{Kind: DetectionFunctionCall, Pattern: "module_init", Weight: 1.5},
		{Kind: DetectionFunctionCall, Pattern: "module_exit", Weight: 1.0},
		{Kind: DetectionFunctionCall, Pattern: "container_of", Weight: 1.0},
		{Kind: DetectionTypeName, Pattern: "spinlock_t", Weight: 0.5},
		{Kind: DetectionTypeName, Pattern: "atomic_t", Weight: 0.5},
	}
}

func (p *LinuxPlatform) HeaderStubs() *HeaderStubs { return p.stubs }

func (p *LinuxPlatform) AttributesToStrip() []string {
	return []string{
		"__init", "__exit", "__initdata", "__exitdata", "__devinit", "__devexit",
		"__user", "__kernel", "__iomem", "__percpu", "__rcu", "__force",
		"__must_check", "__read_mostly", "__ro_after_init", "asmlinkage",
		"EXPORT_SYMBOL", "EXPORT_SYMBOL_GPL", "EXPORT_SYMBOL_NS", "EXPORT_SYMBOL_NS_GPL",
		"__maybe_unused", "__always_unused", "__cold", "__weak", "__visible",
	}
}

func (p *LinuxPlatform) OpsStructs() []OpsStructDef {
	return []OpsStructDef{
		{
			StructName: "file_operations",
			Fields: []OpsFieldDef{
				{Name: "open", Category: CallbackOpen},
				{Name: "release", Category: CallbackClose},
				{Name: "read", Category: CallbackRead},
				{Name: "write", Category: CallbackWrite},
				{Name: "unlocked_ioctl", Category: CallbackIoctl},
				{Name: "mmap", Category: CallbackMmap},
				{Name: "poll", Category: CallbackPoll},
			},
		},
		{
			StructName: "pci_driver",
			Fields: []OpsFieldDef{
				{Name: "probe", Category: CallbackProbe},
				{Name: "remove", Category: CallbackRemove},
				{Name: "suspend", Category: CallbackSuspend},
				{Name: "resume", Category: CallbackResume},
			},
		},
	}
}

func (p *LinuxPlatform) CallNormalizations() map[string]string {
	return map[string]string{
		"kzalloc":  "kmalloc",
		"vzalloc":  "vmalloc",
		"dev_err":  "printk",
		"dev_warn": "printk",
		"dev_info": "printk",
		"pr_err":   "printk",
		"pr_warn":  "printk",
		"pr_info":  "printk",
	}
}
