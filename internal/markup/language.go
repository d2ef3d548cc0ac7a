// Package markup implements the syntax colorizer: language detection by
// path and a table-driven exclusion-region colorize pass (spec.md §4.3),
// grounded in original_source/MarkUp.cpp and MarkUpColorizers.cpp.
package markup

import (
	"path/filepath"
	"strings"
)

// Language identifies one of the registered syntaxes, or LangNone when no
// syntax is detected for a path.
type Language int

const (
	LangNone Language = iota
	LangC
	LangCPP
	LangSwift
	LangPython
	LangJavaScript
	LangGo
	LangRust
	LangJava
	LangShell
	LangMakefile
	LangHTML
	LangCSS
	LangJSON
	LangMarkdown
)

// syntax describes the highlighting rules for one language (spec.md §4.3's
// LanguageSyntax table entry).
type syntax struct {
	name                 string
	suffixes             []string
	exactNames           []string
	lineComment          string
	blockCommentOpen     string
	blockCommentClose    string
	multilineStringDelim string
	nestedBlockComments  bool
	preprocessorHash     bool // '#' at line start means preprocessor/include, not a comment
	keywords             []string
	types                []string
	constants            []string
}

func csv(s string) []string { return strings.Split(s, ",") }

var registry = map[Language]syntax{
	LangC: {
		name: "c", suffixes: []string{".c", ".h"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		preprocessorHash: true,
		keywords:         csv("if,else,for,while,do,switch,case,default,break,continue,return,goto,sizeof,typedef,struct,union,enum,static,extern,const,volatile,register,inline,void"),
		types:            csv("int,char,float,double,long,short,unsigned,signed,size_t,bool,int8_t,int16_t,int32_t,int64_t,uint8_t,uint16_t,uint32_t,uint64_t"),
		constants:        csv("NULL,true,false"),
	},
	LangCPP: {
		name: "cpp", suffixes: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		preprocessorHash: true,
		keywords:         csv("if,else,for,while,do,switch,case,default,break,continue,return,goto,sizeof,typedef,new,delete,class,struct,union,enum,public,private,protected,virtual,override,static,extern,const,volatile,template,typename,namespace,using,try,catch,throw,friend,operator,explicit,inline,this"),
		types:            csv("int,char,float,double,long,short,unsigned,signed,bool,size_t,auto,void,wchar_t"),
		constants:        csv("nullptr,true,false,NULL"),
	},
	LangSwift: {
		name: "swift", suffixes: []string{".swift"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		nestedBlockComments: true,
		keywords:            csv("if,else,for,while,repeat,switch,case,default,break,continue,return,guard,func,class,struct,enum,protocol,extension,import,var,let,public,private,internal,fileprivate,static,final,override,init,deinit,throws,try,catch,defer,in,where,as,is"),
		types:                csv("Int,Double,Float,String,Bool,Character,Array,Dictionary,Set,Any,AnyObject,Optional"),
		constants:            csv("true,false,nil"),
	},
	LangPython: {
		name: "python", suffixes: []string{".py"},
		lineComment: "#", multilineStringDelim: `"""`,
		keywords:  csv("if,elif,else,for,while,def,class,return,import,from,as,try,except,finally,raise,with,lambda,pass,break,continue,yield,global,nonlocal,assert,del,in,is,not,and,or,async,await"),
		types:     csv("int,float,str,bool,list,dict,set,tuple,bytes"),
		constants: csv("True,False,None"),
	},
	LangJavaScript: {
		name: "javascript", suffixes: []string{".js", ".jsx", ".ts", ".tsx", ".mjs"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		keywords:  csv("if,else,for,while,do,switch,case,default,break,continue,return,function,class,extends,new,delete,typeof,instanceof,var,let,const,import,export,from,as,try,catch,finally,throw,async,await,yield,this,super,in,of"),
		types:     csv("string,number,boolean,object,symbol,bigint,any,unknown,never,void"),
		constants: csv("true,false,null,undefined,NaN"),
	},
	LangGo: {
		name: "go", suffixes: []string{".go"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		keywords:  csv("break,case,chan,const,continue,default,defer,else,fallthrough,for,func,go,goto,if,import,interface,map,package,range,return,select,struct,switch,type,var"),
		types:     csv("int,int8,int16,int32,int64,uint,uint8,uint16,uint32,uint64,uintptr,float32,float64,complex64,complex128,string,bool,byte,rune,error,any"),
		constants: csv("true,false,nil,iota"),
	},
	LangRust: {
		name: "rust", suffixes: []string{".rs"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		nestedBlockComments: true,
		keywords:            csv("if,else,for,while,loop,match,fn,struct,enum,trait,impl,pub,use,mod,let,mut,const,static,return,break,continue,as,ref,move,dyn,where,async,await,unsafe,in"),
		types:                csv("i8,i16,i32,i64,i128,u8,u16,u32,u64,u128,f32,f64,bool,char,str,String,Vec,Option,Result,Box"),
		constants:            csv("true,false,None,Some,Ok,Err"),
	},
	LangJava: {
		name: "java", suffixes: []string{".java"},
		lineComment: "//", blockCommentOpen: "/*", blockCommentClose: "*/",
		keywords:  csv("if,else,for,while,do,switch,case,default,break,continue,return,class,interface,extends,implements,new,import,package,public,private,protected,static,final,abstract,synchronized,try,catch,finally,throw,throws,this,super,instanceof"),
		types:     csv("int,long,short,byte,char,float,double,boolean,String,Integer,Object,void"),
		constants: csv("true,false,null"),
	},
	LangShell: {
		name: "shell", suffixes: []string{".sh", ".bash", ".zsh"},
		lineComment: "#",
		keywords:    csv("if,then,elif,else,fi,for,while,until,do,done,case,esac,function,return,break,continue,in,select,local,export,readonly"),
		types:       nil,
		constants:   csv("true,false"),
	},
	LangMakefile: {
		name: "makefile", exactNames: []string{"Makefile", "makefile", "GNUmakefile"},
		lineComment: "#",
		keywords:    csv("ifeq,ifneq,ifdef,ifndef,else,endif,include,define,endef,export,unexport,vpath"),
	},
	LangHTML: {
		name: "html", suffixes: []string{".html", ".htm"},
		blockCommentOpen: "<!--", blockCommentClose: "-->",
	},
	LangCSS: {
		name: "css", suffixes: []string{".css"},
		blockCommentOpen: "/*", blockCommentClose: "*/",
	},
	LangJSON: {
		name: "json", suffixes: []string{".json"},
		constants: csv("true,false,null"),
	},
	LangMarkdown: {
		name: "markdown", suffixes: []string{".md", ".markdown"},
	},
}

// DetectLanguage matches a path first against exact base filenames
// (Makefile, GNUmakefile), then against registered suffixes.
func DetectLanguage(path string) Language {
	if path == "" {
		return LangNone
	}
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	for lang, s := range registry {
		for _, name := range s.exactNames {
			if base == name {
				return lang
			}
		}
	}
	for lang, s := range registry {
		for _, suf := range s.suffixes {
			if ext == suf {
				return lang
			}
		}
	}
	return LangNone
}

func (l Language) syntax() (syntax, bool) {
	s, ok := registry[l]
	return s, ok
}

// Name returns the language's display name, or "" for LangNone.
func (l Language) Name() string {
	if s, ok := registry[l]; ok {
		return s.name
	}
	return ""
}
