package cil

// Shorthands keep the catalog readable.
const (
	kNone   = OperandNone
	kI1     = OperandInt8
	kI4     = OperandInt32
	kI8     = OperandInt64
	kR4     = OperandFloat32
	kR8     = OperandFloat64
	kStr    = OperandString
	kBrS    = OperandShortBranchTarget
	kBr     = OperandBranchTarget
	kSwitch = OperandSwitchTargets
	kVarS   = OperandShortVariableIndex
	kVar    = OperandVariableIndex
	kType   = OperandTypeRef
	kMethod = OperandMethodRef
	kField  = OperandFieldRef
	kTok    = OperandTokenRef
	kSig    = OperandSignature

	fNext  = FlowSequential
	fBr    = FlowBranch
	fCond  = FlowConditionalBranch
	fCall  = FlowCall
	fRet   = FlowReturn
	fThrow = FlowThrow
	fBreak = FlowBreak
	fMeta  = FlowMeta
)

// catalog is the ECMA-335 Partition III instruction set.
var catalog = []OpCode{
	{"nop", 0x00, kNone, fNext},
	{"break", 0x01, kNone, fBreak},
	{"ldarg.0", 0x02, kNone, fNext},
	{"ldarg.1", 0x03, kNone, fNext},
	{"ldarg.2", 0x04, kNone, fNext},
	{"ldarg.3", 0x05, kNone, fNext},
	{"ldloc.0", 0x06, kNone, fNext},
	{"ldloc.1", 0x07, kNone, fNext},
	{"ldloc.2", 0x08, kNone, fNext},
	{"ldloc.3", 0x09, kNone, fNext},
	{"stloc.0", 0x0A, kNone, fNext},
	{"stloc.1", 0x0B, kNone, fNext},
	{"stloc.2", 0x0C, kNone, fNext},
	{"stloc.3", 0x0D, kNone, fNext},
	{"ldarg.s", 0x0E, kVarS, fNext},
	{"ldarga.s", 0x0F, kVarS, fNext},
	{"starg.s", 0x10, kVarS, fNext},
	{"ldloc.s", 0x11, kVarS, fNext},
	{"ldloca.s", 0x12, kVarS, fNext},
	{"stloc.s", 0x13, kVarS, fNext},
	{"ldnull", 0x14, kNone, fNext},
	{"ldc.i4.m1", 0x15, kNone, fNext},
	{"ldc.i4.0", 0x16, kNone, fNext},
	{"ldc.i4.1", 0x17, kNone, fNext},
	{"ldc.i4.2", 0x18, kNone, fNext},
	{"ldc.i4.3", 0x19, kNone, fNext},
	{"ldc.i4.4", 0x1A, kNone, fNext},
	{"ldc.i4.5", 0x1B, kNone, fNext},
	{"ldc.i4.6", 0x1C, kNone, fNext},
	{"ldc.i4.7", 0x1D, kNone, fNext},
	{"ldc.i4.8", 0x1E, kNone, fNext},
	{"ldc.i4.s", 0x1F, kI1, fNext},
	{"ldc.i4", 0x20, kI4, fNext},
	{"ldc.i8", 0x21, kI8, fNext},
	{"ldc.r4", 0x22, kR4, fNext},
	{"ldc.r8", 0x23, kR8, fNext},
	{"dup", 0x25, kNone, fNext},
	{"pop", 0x26, kNone, fNext},
	{"jmp", 0x27, kMethod, fCall},
	{"call", 0x28, kMethod, fCall},
	{"calli", 0x29, kSig, fCall},
	{"ret", 0x2A, kNone, fRet},
	{"br.s", 0x2B, kBrS, fBr},
	{"brfalse.s", 0x2C, kBrS, fCond},
	{"brtrue.s", 0x2D, kBrS, fCond},
	{"beq.s", 0x2E, kBrS, fCond},
	{"bge.s", 0x2F, kBrS, fCond},
	{"bgt.s", 0x30, kBrS, fCond},
	{"ble.s", 0x31, kBrS, fCond},
	{"blt.s", 0x32, kBrS, fCond},
	{"bne.un.s", 0x33, kBrS, fCond},
	{"bge.un.s", 0x34, kBrS, fCond},
	{"bgt.un.s", 0x35, kBrS, fCond},
	{"ble.un.s", 0x36, kBrS, fCond},
	{"blt.un.s", 0x37, kBrS, fCond},
	{"br", 0x38, kBr, fBr},
	{"brfalse", 0x39, kBr, fCond},
	{"brtrue", 0x3A, kBr, fCond},
	{"beq", 0x3B, kBr, fCond},
	{"bge", 0x3C, kBr, fCond},
	{"bgt", 0x3D, kBr, fCond},
	{"ble", 0x3E, kBr, fCond},
	{"blt", 0x3F, kBr, fCond},
	{"bne.un", 0x40, kBr, fCond},
	{"bge.un", 0x41, kBr, fCond},
	{"bgt.un", 0x42, kBr, fCond},
	{"ble.un", 0x43, kBr, fCond},
	{"blt.un", 0x44, kBr, fCond},
	{"switch", 0x45, kSwitch, fCond},
	{"ldind.i1", 0x46, kNone, fNext},
	{"ldind.u1", 0x47, kNone, fNext},
	{"ldind.i2", 0x48, kNone, fNext},
	{"ldind.u2", 0x49, kNone, fNext},
	{"ldind.i4", 0x4A, kNone, fNext},
	{"ldind.u4", 0x4B, kNone, fNext},
	{"ldind.i8", 0x4C, kNone, fNext},
	{"ldind.i", 0x4D, kNone, fNext},
	{"ldind.r4", 0x4E, kNone, fNext},
	{"ldind.r8", 0x4F, kNone, fNext},
	{"ldind.ref", 0x50, kNone, fNext},
	{"stind.ref", 0x51, kNone, fNext},
	{"stind.i1", 0x52, kNone, fNext},
	{"stind.i2", 0x53, kNone, fNext},
	{"stind.i4", 0x54, kNone, fNext},
	{"stind.i8", 0x55, kNone, fNext},
	{"stind.r4", 0x56, kNone, fNext},
	{"stind.r8", 0x57, kNone, fNext},
	{"add", 0x58, kNone, fNext},
	{"sub", 0x59, kNone, fNext},
	{"mul", 0x5A, kNone, fNext},
	{"div", 0x5B, kNone, fNext},
	{"div.un", 0x5C, kNone, fNext},
	{"rem", 0x5D, kNone, fNext},
	{"rem.un", 0x5E, kNone, fNext},
	{"and", 0x5F, kNone, fNext},
	{"or", 0x60, kNone, fNext},
	{"xor", 0x61, kNone, fNext},
	{"shl", 0x62, kNone, fNext},
	{"shr", 0x63, kNone, fNext},
	{"shr.un", 0x64, kNone, fNext},
	{"neg", 0x65, kNone, fNext},
	{"not", 0x66, kNone, fNext},
	{"conv.i1", 0x67, kNone, fNext},
	{"conv.i2", 0x68, kNone, fNext},
	{"conv.i4", 0x69, kNone, fNext},
	{"conv.i8", 0x6A, kNone, fNext},
	{"conv.r4", 0x6B, kNone, fNext},
	{"conv.r8", 0x6C, kNone, fNext},
	{"conv.u4", 0x6D, kNone, fNext},
	{"conv.u8", 0x6E, kNone, fNext},
	{"callvirt", 0x6F, kMethod, fCall},
	{"cpobj", 0x70, kType, fNext},
	{"ldobj", 0x71, kType, fNext},
	{"ldstr", 0x72, kStr, fNext},
	{"newobj", 0x73, kMethod, fCall},
	{"castclass", 0x74, kType, fNext},
	{"isinst", 0x75, kType, fNext},
	{"conv.r.un", 0x76, kNone, fNext},
	{"unbox", 0x79, kType, fNext},
	{"throw", 0x7A, kNone, fThrow},
	{"ldfld", 0x7B, kField, fNext},
	{"ldflda", 0x7C, kField, fNext},
	{"stfld", 0x7D, kField, fNext},
	{"ldsfld", 0x7E, kField, fNext},
	{"ldsflda", 0x7F, kField, fNext},
	{"stsfld", 0x80, kField, fNext},
	{"stobj", 0x81, kType, fNext},
	{"conv.ovf.i1.un", 0x82, kNone, fNext},
	{"conv.ovf.i2.un", 0x83, kNone, fNext},
	{"conv.ovf.i4.un", 0x84, kNone, fNext},
	{"conv.ovf.i8.un", 0x85, kNone, fNext},
	{"conv.ovf.u1.un", 0x86, kNone, fNext},
	{"conv.ovf.u2.un", 0x87, kNone, fNext},
	{"conv.ovf.u4.un", 0x88, kNone, fNext},
	{"conv.ovf.u8.un", 0x89, kNone, fNext},
	{"conv.ovf.i.un", 0x8A, kNone, fNext},
	{"conv.ovf.u.un", 0x8B, kNone, fNext},
	{"box", 0x8C, kType, fNext},
	{"newarr", 0x8D, kType, fNext},
	{"ldlen", 0x8E, kNone, fNext},
	{"ldelema", 0x8F, kType, fNext},
	{"ldelem.i1", 0x90, kNone, fNext},
	{"ldelem.u1", 0x91, kNone, fNext},
	{"ldelem.i2", 0x92, kNone, fNext},
	{"ldelem.u2", 0x93, kNone, fNext},
	{"ldelem.i4", 0x94, kNone, fNext},
	{"ldelem.u4", 0x95, kNone, fNext},
	{"ldelem.i8", 0x96, kNone, fNext},
	{"ldelem.i", 0x97, kNone, fNext},
	{"ldelem.r4", 0x98, kNone, fNext},
	{"ldelem.r8", 0x99, kNone, fNext},
	{"ldelem.ref", 0x9A, kNone, fNext},
	{"stelem.i", 0x9B, kNone, fNext},
	{"stelem.i1", 0x9C, kNone, fNext},
	{"stelem.i2", 0x9D, kNone, fNext},
	{"stelem.i4", 0x9E, kNone, fNext},
	{"stelem.i8", 0x9F, kNone, fNext},
	{"stelem.r4", 0xA0, kNone, fNext},
	{"stelem.r8", 0xA1, kNone, fNext},
	{"stelem.ref", 0xA2, kNone, fNext},
	{"ldelem", 0xA3, kType, fNext},
	{"stelem", 0xA4, kType, fNext},
	{"unbox.any", 0xA5, kType, fNext},
	{"conv.ovf.i1", 0xB3, kNone, fNext},
	{"conv.ovf.u1", 0xB4, kNone, fNext},
	{"conv.ovf.i2", 0xB5, kNone, fNext},
	{"conv.ovf.u2", 0xB6, kNone, fNext},
	{"conv.ovf.i4", 0xB7, kNone, fNext},
	{"conv.ovf.u4", 0xB8, kNone, fNext},
	{"conv.ovf.i8", 0xB9, kNone, fNext},
	{"conv.ovf.u8", 0xBA, kNone, fNext},
	{"refanyval", 0xC2, kType, fNext},
	{"ckfinite", 0xC3, kNone, fNext},
	{"mkrefany", 0xC6, kType, fNext},
	{"ldtoken", 0xD0, kTok, fNext},
	{"conv.u2", 0xD1, kNone, fNext},
	{"conv.u1", 0xD2, kNone, fNext},
	{"conv.i", 0xD3, kNone, fNext},
	{"conv.ovf.i", 0xD4, kNone, fNext},
	{"conv.ovf.u", 0xD5, kNone, fNext},
	{"add.ovf", 0xD6, kNone, fNext},
	{"add.ovf.un", 0xD7, kNone, fNext},
	{"mul.ovf", 0xD8, kNone, fNext},
	{"mul.ovf.un", 0xD9, kNone, fNext},
	{"sub.ovf", 0xDA, kNone, fNext},
	{"sub.ovf.un", 0xDB, kNone, fNext},
	{"endfinally", 0xDC, kNone, fRet},
	{"leave", 0xDD, kBr, fBr},
	{"leave.s", 0xDE, kBrS, fBr},
	{"stind.i", 0xDF, kNone, fNext},
	{"conv.u", 0xE0, kNone, fNext},

	{"arglist", 0xFE00, kNone, fNext},
	{"ceq", 0xFE01, kNone, fNext},
	{"cgt", 0xFE02, kNone, fNext},
	{"cgt.un", 0xFE03, kNone, fNext},
	{"clt", 0xFE04, kNone, fNext},
	{"clt.un", 0xFE05, kNone, fNext},
	{"ldftn", 0xFE06, kMethod, fNext},
	{"ldvirtftn", 0xFE07, kMethod, fNext},
	{"ldarg", 0xFE09, kVar, fNext},
	{"ldarga", 0xFE0A, kVar, fNext},
	{"starg", 0xFE0B, kVar, fNext},
	{"ldloc", 0xFE0C, kVar, fNext},
	{"ldloca", 0xFE0D, kVar, fNext},
	{"stloc", 0xFE0E, kVar, fNext},
	{"localloc", 0xFE0F, kNone, fNext},
	{"endfilter", 0xFE11, kNone, fRet},
	{"unaligned.", 0xFE12, kI1, fMeta},
	{"volatile.", 0xFE13, kNone, fMeta},
	{"tail.", 0xFE14, kNone, fMeta},
	{"initobj", 0xFE15, kType, fNext},
	{"constrained.", 0xFE16, kType, fMeta},
	{"cpblk", 0xFE17, kNone, fNext},
	{"initblk", 0xFE18, kNone, fNext},
	{"no.", 0xFE19, kI1, fMeta},
	{"rethrow", 0xFE1A, kNone, fThrow},
	{"sizeof", 0xFE1C, kType, fNext},
	{"refanytype", 0xFE1D, kNone, fNext},
	{"readonly.", 0xFE1E, kNone, fMeta},
}
